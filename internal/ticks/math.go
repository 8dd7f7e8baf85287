package ticks

import (
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/utils"

	"flashLedger/internal/model"
)

var (
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	wrap256    = new(big.Int).Lsh(big.NewInt(1), 256)
)

// AddDelta applies a signed liquidity change to an unsigned liquidity amount,
// rejecting results outside the unsigned 128-bit range.
func AddDelta(liquidity, delta *big.Int) (*big.Int, error) {
	out := new(big.Int).Add(liquidity, delta)
	if out.Sign() < 0 {
		return nil, model.ErrLiquidityUnderflow
	}
	if out.Cmp(maxUint128) > 0 {
		return nil, model.ErrLiquidityOverflow
	}
	return out, nil
}

// MaxLiquidityPerTick bounds the gross liquidity any one tick may carry so
// that the sum over all usable ticks stays inside 128 bits.
func MaxLiquidityPerTick(tickSpacing int) *big.Int {
	spacing := int64(tickSpacing)
	minTick := (int64(utils.MinTick) / spacing) * spacing
	maxTick := (int64(utils.MaxTick) / spacing) * spacing
	numTicks := (maxTick-minTick)/spacing + 1
	return new(big.Int).Div(maxUint128, big.NewInt(numTicks))
}

// subIn256 subtracts with the wrap-around semantics of unsigned 256-bit
// arithmetic, which the fee growth accumulators rely on.
func subIn256(x, y *big.Int) *big.Int {
	out := new(big.Int).Sub(x, y)
	if out.Sign() < 0 {
		out.Add(out, wrap256)
	}
	return out
}
