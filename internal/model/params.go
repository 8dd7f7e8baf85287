package model

import "math/big"

// SwapParams describes a swap request. A positive AmountSpecified is an
// exact-input swap, a negative one an exact-output swap. SqrtPriceLimitX96
// bounds how far the price may move; nil means the extreme bound for the
// swap direction.
type SwapParams struct {
	ZeroForOne        bool
	AmountSpecified   *big.Int
	SqrtPriceLimitX96 *big.Int
}

// ModifyPositionParams describes a liquidity change on a tick range. A
// positive LiquidityDelta adds liquidity, a negative one removes it, zero
// pokes the position to collect accrued fees.
type ModifyPositionParams struct {
	TickLower      int
	TickUpper      int
	LiquidityDelta *big.Int
}
