package pool

import (
	"fmt"
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/fees"
	"flashLedger/internal/model"
	"flashLedger/internal/ticks"
)

// ModifyResult reports the outcome of a position change: the caller's
// balance delta including accrued position fees, and any withdraw-fee cuts
// taken for the protocol and the hook.
type ModifyResult struct {
	Delta        model.BalanceDelta
	ProtocolFees model.FeePair
	HookFees     model.FeePair
}

func (p *Pool) checkTicks(tickLower, tickUpper int) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("tickLower %d not below tickUpper %d: %w", tickLower, tickUpper, model.ErrInvalidTickRange)
	}
	if tickLower < utils.MinTick {
		return fmt.Errorf("tickLower %d below minimum: %w", tickLower, model.ErrInvalidTickRange)
	}
	if tickUpper > utils.MaxTick {
		return fmt.Errorf("tickUpper %d above maximum: %w", tickUpper, model.ErrInvalidTickRange)
	}
	spacing := int(p.Key.TickSpacing)
	if tickLower%spacing != 0 || tickUpper%spacing != 0 {
		return fmt.Errorf("ticks not aligned to spacing %d: %w", spacing, model.ErrInvalidTickRange)
	}
	return nil
}

// ModifyPosition applies a liquidity change for owner on a tick range,
// settling the position's accrued fees into the returned delta. Withdrawn
// principal is subject to the withdraw fee split.
func (p *Pool) ModifyPosition(owner common.Address, params model.ModifyPositionParams, withdrawSplit fees.Split) (ModifyResult, error) {
	if err := p.checkTicks(params.TickLower, params.TickUpper); err != nil {
		return ModifyResult{}, err
	}

	liquidityDelta := params.LiquidityDelta
	if liquidityDelta == nil {
		liquidityDelta = big.NewInt(0)
	}

	key := ticks.PositionKey{Owner: owner, TickLower: params.TickLower, TickUpper: params.TickUpper}
	if liquidityDelta.Sign() < 0 {
		pos, _ := p.positions.Get(key)
		if pos.Liquidity.Cmp(new(big.Int).Neg(liquidityDelta)) < 0 {
			return ModifyResult{}, model.ErrLiquidityUnderflow
		}
	}

	feesOwed0, feesOwed1, err := p.updatePosition(key, liquidityDelta)
	if err != nil {
		return ModifyResult{}, err
	}

	// Pool-perspective principal amounts, signed like the liquidity change.
	amount0 := big.NewInt(0)
	amount1 := big.NewInt(0)
	if liquidityDelta.Sign() != 0 {
		sqrtLower, err := utils.GetSqrtRatioAtTick(params.TickLower)
		if err != nil {
			return ModifyResult{}, fmt.Errorf("sqrt ratio at tick %d: %w", params.TickLower, err)
		}
		sqrtUpper, err := utils.GetSqrtRatioAtTick(params.TickUpper)
		if err != nil {
			return ModifyResult{}, fmt.Errorf("sqrt ratio at tick %d: %w", params.TickUpper, err)
		}

		switch {
		case p.Tick < params.TickLower:
			amount0 = signedAmount0(sqrtLower, sqrtUpper, liquidityDelta)
		case p.Tick < params.TickUpper:
			amount0 = signedAmount0(p.SqrtPriceX96, sqrtUpper, liquidityDelta)
			amount1 = signedAmount1(sqrtLower, p.SqrtPriceX96, liquidityDelta)
			p.Liquidity, err = ticks.AddDelta(p.Liquidity, liquidityDelta)
			if err != nil {
				return ModifyResult{}, err
			}
		default:
			amount1 = signedAmount1(sqrtLower, sqrtUpper, liquidityDelta)
		}
	}

	caller0 := new(big.Int).Neg(amount0)
	caller1 := new(big.Int).Neg(amount1)

	result := ModifyResult{ProtocolFees: model.NewFeePair(), HookFees: model.NewFeePair()}
	if liquidityDelta.Sign() < 0 {
		proto0, hook0, rem0 := withdrawSplit.Apply(caller0)
		proto1, hook1, rem1 := withdrawSplit.Apply(caller1)
		result.ProtocolFees.Amount0.Set(proto0)
		result.ProtocolFees.Amount1.Set(proto1)
		result.HookFees.Amount0.Set(hook0)
		result.HookFees.Amount1.Set(hook1)
		caller0, caller1 = rem0, rem1
	}

	caller0.Add(caller0, feesOwed0)
	caller1.Add(caller1, feesOwed1)
	result.Delta = model.BalanceDelta{Amount0: caller0, Amount1: caller1}
	return result, nil
}

func (p *Pool) updatePosition(key ticks.PositionKey, liquidityDelta *big.Int) (*big.Int, *big.Int, error) {
	flippedLower := false
	flippedUpper := false
	if liquidityDelta.Sign() != 0 {
		var err error
		flippedLower, err = p.ticks.Update(key.TickLower, p.Tick, liquidityDelta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, false, p.maxLiquidityPerTick)
		if err != nil {
			return nil, nil, err
		}
		flippedUpper, err = p.ticks.Update(key.TickUpper, p.Tick, liquidityDelta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, true, p.maxLiquidityPerTick)
		if err != nil {
			return nil, nil, err
		}
	}

	inside0, inside1 := p.ticks.FeeGrowthInside(key.TickLower, key.TickUpper, p.Tick,
		p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)

	feesOwed0, feesOwed1, err := p.positions.Update(key, liquidityDelta, inside0, inside1)
	if err != nil {
		return nil, nil, err
	}

	if liquidityDelta.Sign() < 0 {
		if flippedLower {
			p.ticks.Clear(key.TickLower)
		}
		if flippedUpper {
			p.ticks.Clear(key.TickUpper)
		}
	}
	return feesOwed0, feesOwed1, nil
}
