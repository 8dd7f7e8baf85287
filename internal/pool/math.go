package pool

import (
	"math/big"

	"github.com/daoleno/uniswapv3-sdk/constants"
)

var q128 = new(big.Int).Lsh(big.NewInt(1), 128)

func divRoundingUp(x, y *big.Int) *big.Int {
	quo, rem := new(big.Int).QuoRem(x, y, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// amount0Delta returns the currency0 magnitude held between two sqrt prices
// by the given liquidity: liquidity << 96 * (sqrtB - sqrtA) / sqrtB / sqrtA.
func amount0Delta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	numerator := new(big.Int).Lsh(liquidity, 96)
	numerator.Mul(numerator, new(big.Int).Sub(sqrtB, sqrtA))
	if roundUp {
		return divRoundingUp(divRoundingUp(numerator, sqrtB), sqrtA)
	}
	out := numerator.Div(numerator, sqrtB)
	return out.Div(out, sqrtA)
}

// amount1Delta returns the currency1 magnitude held between two sqrt prices:
// liquidity * (sqrtB - sqrtA) / 2^96.
func amount1Delta(sqrtA, sqrtB, liquidity *big.Int, roundUp bool) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	numerator := new(big.Int).Mul(liquidity, new(big.Int).Sub(sqrtB, sqrtA))
	if roundUp {
		return divRoundingUp(numerator, constants.Q96)
	}
	return numerator.Div(numerator, constants.Q96)
}

// signedAmount0 converts a signed liquidity change into the signed currency0
// amount from the pool's perspective. Adding liquidity rounds the amount the
// pool receives up; removing rounds the amount it pays out down.
func signedAmount0(sqrtA, sqrtB, liquidityDelta *big.Int) *big.Int {
	if liquidityDelta.Sign() < 0 {
		magnitude := amount0Delta(sqrtA, sqrtB, new(big.Int).Neg(liquidityDelta), false)
		return magnitude.Neg(magnitude)
	}
	return amount0Delta(sqrtA, sqrtB, liquidityDelta, true)
}

// signedAmount1 is signedAmount0 for currency1.
func signedAmount1(sqrtA, sqrtB, liquidityDelta *big.Int) *big.Int {
	if liquidityDelta.Sign() < 0 {
		magnitude := amount1Delta(sqrtA, sqrtB, new(big.Int).Neg(liquidityDelta), false)
		return magnitude.Neg(magnitude)
	}
	return amount1Delta(sqrtA, sqrtB, liquidityDelta, true)
}
