package replay

import "flashLedger/internal/model"

// StaticFees serves one packed fee composite to every pool.
type StaticFees struct {
	Protocol model.PackedFee
	Hook     model.PackedFee
}

func (f StaticFees) ProtocolFeesFor(model.PoolKey) (model.PackedFee, error) {
	return f.Protocol, nil
}

func (f StaticFees) HookFeesFor(model.PoolKey) (model.PackedFee, error) {
	return f.Hook, nil
}

// StaticRate answers every dynamic-fee pool with one fixed swap fee rate.
type StaticRate struct {
	Fee uint32
}

func (r StaticRate) ResolveFee(model.PoolKey) (uint32, error) {
	return r.Fee, nil
}
