package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// Slot0 returns the price head of a pool.
func (m *PoolManager) Slot0(id model.PoolId) (model.Slot0, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return model.Slot0{}, model.ErrPoolNotInitialized
	}
	return p.Slot0(), nil
}

// Liquidity returns a pool's current in-range liquidity.
func (m *PoolManager) Liquidity(id model.PoolId) (*big.Int, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return nil, model.ErrPoolNotInitialized
	}
	return new(big.Int).Set(p.Liquidity), nil
}

// Position returns one position of a pool.
func (m *PoolManager) Position(id model.PoolId, owner common.Address, tickLower, tickUpper int) (model.PositionView, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return model.PositionView{}, model.ErrPoolNotInitialized
	}
	return p.Position(owner, tickLower, tickUpper), nil
}

// StateView returns the full read-only dump of a pool, the shape persisted
// as a pool snapshot.
func (m *PoolManager) StateView(id model.PoolId) (model.StateView, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return model.StateView{}, model.ErrPoolNotInitialized
	}
	return p.StateView(), nil
}

// CurrencyDelta returns the caller's outstanding delta in a currency for
// the open session, zero when idle.
func (m *PoolManager) CurrencyDelta(caller, currency common.Address) *big.Int {
	return m.deltas.Delta(caller, currency)
}

// ClaimBalance returns an owner's minted claim balance in a currency.
func (m *PoolManager) ClaimBalance(owner, currency common.Address) *big.Int {
	return m.claims.Balance(owner, currency).ToBig()
}

// ProtocolFeesAccrued returns the protocol fees accrued for a pool.
func (m *PoolManager) ProtocolFeesAccrued(id model.PoolId) model.FeePair {
	if pair, ok := m.protocolFees[id]; ok {
		return pair.Clone()
	}
	return model.NewFeePair()
}

// HookFeesAccrued returns the hook fees accrued for a pool.
func (m *PoolManager) HookFeesAccrued(id model.PoolId) model.FeePair {
	if pair, ok := m.hookFees[id]; ok {
		return pair.Clone()
	}
	return model.NewFeePair()
}

// PoolIDs lists all initialized pools in stable order.
func (m *PoolManager) PoolIDs() []model.PoolId {
	return m.registry.IDs()
}

// ActiveLocker returns the current lock holder, zero when idle.
func (m *PoolManager) ActiveLocker() common.Address {
	return m.locks.Active()
}

// LockDepth returns the current lock nesting depth.
func (m *PoolManager) LockDepth() int {
	return m.locks.Depth()
}
