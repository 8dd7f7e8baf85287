package pool

import (
	"fmt"
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/constants"
	"github.com/daoleno/uniswapv3-sdk/utils"

	"flashLedger/internal/fees"
	"flashLedger/internal/model"
	"flashLedger/internal/ticks"
)

// SwapResult reports a swap: the caller's delta, the pool state after, and
// the fee charged in the input currency with its protocol and hook cuts.
type SwapResult struct {
	Delta        model.BalanceDelta
	SqrtPriceX96 *big.Int
	Tick         int
	Liquidity    *big.Int
	TotalFee     *big.Int
	ProtocolFee  *big.Int
	HookFee      *big.Int
}

type swapState struct {
	amountSpecifiedRemaining *big.Int
	amountCalculated         *big.Int
	sqrtPriceX96             *big.Int
	tick                     int
	liquidity                *big.Int
	feeGrowthGlobalX128      *big.Int
	protocolFee              *big.Int
	hookFee                  *big.Int
	totalFee                 *big.Int
}

type stepComputations struct {
	sqrtPriceStartX96 *big.Int
	tickNext          int
	initialized       bool
	sqrtPriceNextX96  *big.Int
	amountIn          *big.Int
	amountOut         *big.Int
	feeAmount         *big.Int
}

// Swap moves the pool price until the specified amount is consumed or the
// price limit is reached, stepping across initialized ticks. swapFee is the
// fee rate in millionths; split carves the protocol and hook cuts out of
// each step's fee before the rest accrues to in-range liquidity.
func (p *Pool) Swap(params model.SwapParams, swapFee uint32, split fees.Split) (SwapResult, error) {
	if !p.Initialized() {
		return SwapResult{}, model.ErrPoolNotInitialized
	}

	amountSpecified := params.AmountSpecified
	if amountSpecified == nil || amountSpecified.Sign() == 0 {
		return SwapResult{
			Delta:        model.ZeroDelta(),
			SqrtPriceX96: new(big.Int).Set(p.SqrtPriceX96),
			Tick:         p.Tick,
			Liquidity:    new(big.Int).Set(p.Liquidity),
			TotalFee:     big.NewInt(0),
			ProtocolFee:  big.NewInt(0),
			HookFee:      big.NewInt(0),
		}, nil
	}

	limit := params.SqrtPriceLimitX96
	if limit == nil {
		if params.ZeroForOne {
			limit = new(big.Int).Add(utils.MinSqrtRatio, big.NewInt(1))
		} else {
			limit = new(big.Int).Sub(utils.MaxSqrtRatio, big.NewInt(1))
		}
	}
	if params.ZeroForOne {
		if limit.Cmp(utils.MinSqrtRatio) <= 0 {
			return SwapResult{}, model.ErrPriceLimitOutOfBounds
		}
		if limit.Cmp(p.SqrtPriceX96) >= 0 {
			return SwapResult{}, model.ErrPriceLimitAlreadyExceeded
		}
	} else {
		if limit.Cmp(utils.MaxSqrtRatio) >= 0 {
			return SwapResult{}, model.ErrPriceLimitOutOfBounds
		}
		if limit.Cmp(p.SqrtPriceX96) <= 0 {
			return SwapResult{}, model.ErrPriceLimitAlreadyExceeded
		}
	}

	exactInput := amountSpecified.Sign() > 0
	state := swapState{
		amountSpecifiedRemaining: new(big.Int).Set(amountSpecified),
		amountCalculated:         big.NewInt(0),
		sqrtPriceX96:             new(big.Int).Set(p.SqrtPriceX96),
		tick:                     p.Tick,
		liquidity:                new(big.Int).Set(p.Liquidity),
		protocolFee:              big.NewInt(0),
		hookFee:                  big.NewInt(0),
		totalFee:                 big.NewInt(0),
	}
	if params.ZeroForOne {
		state.feeGrowthGlobalX128 = new(big.Int).Set(p.FeeGrowthGlobal0X128)
	} else {
		state.feeGrowthGlobalX128 = new(big.Int).Set(p.FeeGrowthGlobal1X128)
	}

	for state.amountSpecifiedRemaining.Sign() != 0 && state.sqrtPriceX96.Cmp(limit) != 0 {
		var step stepComputations
		step.sqrtPriceStartX96 = new(big.Int).Set(state.sqrtPriceX96)
		step.tickNext, step.initialized = p.ticks.NextInitialized(state.tick, params.ZeroForOne)

		sqrtPriceNext, err := utils.GetSqrtRatioAtTick(step.tickNext)
		if err != nil {
			return SwapResult{}, fmt.Errorf("sqrt ratio at tick %d: %w", step.tickNext, err)
		}
		step.sqrtPriceNextX96 = sqrtPriceNext

		target := step.sqrtPriceNextX96
		if params.ZeroForOne {
			if step.sqrtPriceNextX96.Cmp(limit) < 0 {
				target = limit
			}
		} else {
			if step.sqrtPriceNextX96.Cmp(limit) > 0 {
				target = limit
			}
		}

		state.sqrtPriceX96, step.amountIn, step.amountOut, step.feeAmount, err = utils.ComputeSwapStep(
			state.sqrtPriceX96, target, state.liquidity, state.amountSpecifiedRemaining, constants.FeeAmount(swapFee))
		if err != nil {
			return SwapResult{}, fmt.Errorf("compute swap step: %w", err)
		}

		if exactInput {
			state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, new(big.Int).Add(step.amountIn, step.feeAmount))
			state.amountCalculated.Sub(state.amountCalculated, step.amountOut)
		} else {
			state.amountSpecifiedRemaining.Add(state.amountSpecifiedRemaining, step.amountOut)
			state.amountCalculated.Add(state.amountCalculated, new(big.Int).Add(step.amountIn, step.feeAmount))
		}

		protoCut, hookCut, lpShare := split.Apply(step.feeAmount)
		state.protocolFee.Add(state.protocolFee, protoCut)
		state.hookFee.Add(state.hookFee, hookCut)
		state.totalFee.Add(state.totalFee, step.feeAmount)
		if state.liquidity.Sign() > 0 && lpShare.Sign() > 0 {
			growth := new(big.Int).Mul(lpShare, q128)
			state.feeGrowthGlobalX128.Add(state.feeGrowthGlobalX128, growth.Div(growth, state.liquidity))
		}

		if state.sqrtPriceX96.Cmp(step.sqrtPriceNextX96) == 0 {
			if step.initialized {
				var net *big.Int
				if params.ZeroForOne {
					net = p.ticks.Cross(step.tickNext, state.feeGrowthGlobalX128, p.FeeGrowthGlobal1X128)
					net.Neg(net)
				} else {
					net = p.ticks.Cross(step.tickNext, p.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128)
				}
				state.liquidity, err = ticks.AddDelta(state.liquidity, net)
				if err != nil {
					return SwapResult{}, err
				}
			}
			if params.ZeroForOne {
				state.tick = step.tickNext - 1
			} else {
				state.tick = step.tickNext
			}
		} else if state.sqrtPriceX96.Cmp(step.sqrtPriceStartX96) != 0 {
			state.tick, err = utils.GetTickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return SwapResult{}, fmt.Errorf("tick at sqrt ratio: %w", err)
			}
		}
	}

	p.SqrtPriceX96 = state.sqrtPriceX96
	p.Tick = state.tick
	p.Liquidity = state.liquidity
	if params.ZeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
	}

	consumed := new(big.Int).Sub(amountSpecified, state.amountSpecifiedRemaining)
	var amount0, amount1 *big.Int
	if params.ZeroForOne == exactInput {
		amount0, amount1 = consumed, state.amountCalculated
	} else {
		amount0, amount1 = state.amountCalculated, consumed
	}

	return SwapResult{
		Delta: model.BalanceDelta{
			Amount0: new(big.Int).Neg(amount0),
			Amount1: new(big.Int).Neg(amount1),
		},
		SqrtPriceX96: new(big.Int).Set(p.SqrtPriceX96),
		Tick:         p.Tick,
		Liquidity:    new(big.Int).Set(p.Liquidity),
		TotalFee:     state.totalFee,
		ProtocolFee:  state.protocolFee,
		HookFee:      state.hookFee,
	}, nil
}
