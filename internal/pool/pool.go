// Package pool implements the per-pool state machine: price and liquidity
// state, position changes, swaps stepping across initialized ticks, and
// donations, with fee accrual split between liquidity providers, the
// protocol, and the pool's hook.
package pool

import (
	"fmt"
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
	"flashLedger/internal/ticks"
)

// Pool is the full state of one pool. Mutating methods leave the pool
// unchanged when they return an error only if the caller works on a clone;
// the engine's session layer does.
type Pool struct {
	Key                  model.PoolKey
	SqrtPriceX96         *big.Int
	Tick                 int
	Liquidity            *big.Int
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
	ProtocolFee          model.PackedFee
	HookFee              model.PackedFee

	maxLiquidityPerTick *big.Int
	ticks               *ticks.Manager
	positions           *ticks.Positions
}

// New builds an uninitialized pool for a key.
func New(key model.PoolKey) *Pool {
	return &Pool{
		Key:                  key,
		SqrtPriceX96:         big.NewInt(0),
		Liquidity:            big.NewInt(0),
		FeeGrowthGlobal0X128: big.NewInt(0),
		FeeGrowthGlobal1X128: big.NewInt(0),
		maxLiquidityPerTick:  ticks.MaxLiquidityPerTick(int(key.TickSpacing)),
		ticks:                ticks.NewManager(),
		positions:            ticks.NewPositions(),
	}
}

// Initialized reports whether the pool has a starting price.
func (p *Pool) Initialized() bool {
	return p.SqrtPriceX96.Sign() != 0
}

// Initialize sets the starting price and derives the current tick from it.
func (p *Pool) Initialize(sqrtPriceX96 *big.Int) (int, error) {
	if p.Initialized() {
		return 0, model.ErrPoolAlreadyInitialized
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(utils.MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(utils.MaxSqrtRatio) >= 0 {
		return 0, model.ErrInvalidSqrtPrice
	}
	tick, err := utils.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, model.ErrInvalidSqrtPrice)
	}
	p.SqrtPriceX96 = new(big.Int).Set(sqrtPriceX96)
	p.Tick = tick
	return tick, nil
}

// Donate pays amounts directly into the fee growth accumulators of the
// current in-range liquidity.
func (p *Pool) Donate(amount0, amount1 *big.Int) (model.BalanceDelta, error) {
	if amount0 == nil {
		amount0 = big.NewInt(0)
	}
	if amount1 == nil {
		amount1 = big.NewInt(0)
	}
	if amount0.Sign() < 0 || amount1.Sign() < 0 {
		return model.BalanceDelta{}, model.ErrNegativeAmount
	}
	if p.Liquidity.Sign() == 0 {
		return model.BalanceDelta{}, model.ErrNoLiquidityToDonate
	}

	if amount0.Sign() > 0 {
		growth := new(big.Int).Mul(amount0, q128)
		p.FeeGrowthGlobal0X128.Add(p.FeeGrowthGlobal0X128, growth.Div(growth, p.Liquidity))
	}
	if amount1.Sign() > 0 {
		growth := new(big.Int).Mul(amount1, q128)
		p.FeeGrowthGlobal1X128.Add(p.FeeGrowthGlobal1X128, growth.Div(growth, p.Liquidity))
	}

	return model.BalanceDelta{
		Amount0: new(big.Int).Neg(amount0),
		Amount1: new(big.Int).Neg(amount1),
	}, nil
}

// Position returns a read-only view of one position.
func (p *Pool) Position(owner common.Address, tickLower, tickUpper int) model.PositionView {
	pos, _ := p.positions.Get(ticks.PositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper})
	return model.PositionView{
		Liquidity:                pos.Liquidity,
		FeeGrowthInside0LastX128: pos.FeeGrowthInside0LastX128,
		FeeGrowthInside1LastX128: pos.FeeGrowthInside1LastX128,
	}
}

// Slot0 returns the pool's price head.
func (p *Pool) Slot0() model.Slot0 {
	return model.Slot0{
		SqrtPriceX96: new(big.Int).Set(p.SqrtPriceX96),
		Tick:         p.Tick,
		ProtocolFee:  p.ProtocolFee,
		HookFee:      p.HookFee,
	}
}

// StateView returns the full read-only dump of the pool.
func (p *Pool) StateView() model.StateView {
	return model.StateView{
		Key:                  p.Key,
		Slot0:                p.Slot0(),
		Liquidity:            new(big.Int).Set(p.Liquidity),
		FeeGrowthGlobal0X128: new(big.Int).Set(p.FeeGrowthGlobal0X128),
		FeeGrowthGlobal1X128: new(big.Int).Set(p.FeeGrowthGlobal1X128),
		TickCount:            p.ticks.Count(),
		PositionCount:        p.positions.Len(),
	}
}

// Clone returns an independent deep copy of the pool.
func (p *Pool) Clone() *Pool {
	return &Pool{
		Key:                  p.Key,
		SqrtPriceX96:         new(big.Int).Set(p.SqrtPriceX96),
		Tick:                 p.Tick,
		Liquidity:            new(big.Int).Set(p.Liquidity),
		FeeGrowthGlobal0X128: new(big.Int).Set(p.FeeGrowthGlobal0X128),
		FeeGrowthGlobal1X128: new(big.Int).Set(p.FeeGrowthGlobal1X128),
		ProtocolFee:          p.ProtocolFee,
		HookFee:              p.HookFee,
		maxLiquidityPerTick:  p.maxLiquidityPerTick,
		ticks:                p.ticks.Clone(),
		positions:            p.positions.Clone(),
	}
}
