// Package fees resolves swap fee rates and splits accrued fees between the
// protocol, the pool's hook, and liquidity providers.
package fees

import (
	"fmt"
	"math/big"

	"flashLedger/internal/model"
)

// Resolver supplies the swap fee rate for dynamic-fee pools.
type Resolver interface {
	ResolveFee(key model.PoolKey) (uint32, error)
}

// Controller supplies the protocol and hook fee composites applied to a pool.
type Controller interface {
	ProtocolFeesFor(key model.PoolKey) (model.PackedFee, error)
	HookFeesFor(key model.PoolKey) (model.PackedFee, error)
}

// SwapFee returns the effective swap fee rate for a pool: the static rate
// for fixed-fee pools, the resolver's answer for dynamic ones.
func SwapFee(key model.PoolKey, resolver Resolver) (uint32, error) {
	if !key.IsDynamicFee() {
		return key.StaticFee(), nil
	}
	if resolver == nil {
		return 0, model.ErrDynamicFeeUnavailable
	}
	fee, err := resolver.ResolveFee(key)
	if err != nil {
		return 0, fmt.Errorf("resolve dynamic fee: %w", err)
	}
	if fee > model.MaxSwapFee {
		return 0, model.ErrFeeTooLarge
	}
	return fee, nil
}

// Split carries the reciprocal denominators cut from an amount. Zero disables
// a cut.
type Split struct {
	Protocol uint8
	Hook     uint8
}

// SwapSplit builds the split applied to swap fees.
func SwapSplit(protocol, hook model.PackedFee) Split {
	return Split{Protocol: protocol.SwapDenominator(), Hook: hook.SwapDenominator()}
}

// WithdrawSplit builds the split applied to withdrawn principal.
func WithdrawSplit(protocol, hook model.PackedFee) Split {
	return Split{Protocol: protocol.WithdrawDenominator(), Hook: hook.WithdrawDenominator()}
}

// Apply divides an amount into protocol cut, hook cut, and remainder. The
// protocol cut comes off the whole amount first, the hook cut off what
// remains; both truncate toward zero.
func (s Split) Apply(amount *big.Int) (*big.Int, *big.Int, *big.Int) {
	remainder := new(big.Int).Set(amount)
	protocol := big.NewInt(0)
	hook := big.NewInt(0)
	if s.Protocol > 0 {
		protocol.Div(remainder, big.NewInt(int64(s.Protocol)))
		remainder.Sub(remainder, protocol)
	}
	if s.Hook > 0 {
		hook.Div(remainder, big.NewInt(int64(s.Hook)))
		remainder.Sub(remainder, hook)
	}
	return protocol, hook, remainder
}
