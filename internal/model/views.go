package model

import "math/big"

// Slot0 is the frequently-read head of a pool's state.
type Slot0 struct {
	SqrtPriceX96 *big.Int
	Tick         int
	ProtocolFee  PackedFee
	HookFee      PackedFee
}

// PositionView is a read-only copy of one position's state.
type PositionView struct {
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

// StateView is a full read-only dump of one pool, the programmatic stand-in
// for reading raw state slots.
type StateView struct {
	Key                  PoolKey
	Slot0                Slot0
	Liquidity            *big.Int
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
	TickCount            int
	PositionCount        int
}
