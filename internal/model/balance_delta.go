package model

import "math/big"

// BalanceDelta is a pair of signed amounts from the caller's perspective:
// negative means the caller owes the ledger that amount of the currency,
// positive means the ledger owes the caller.
type BalanceDelta struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// ZeroDelta returns a delta of zero in both currencies.
func ZeroDelta() BalanceDelta {
	return BalanceDelta{Amount0: big.NewInt(0), Amount1: big.NewInt(0)}
}

// Add returns the component-wise sum of two deltas.
func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Add(d.Amount0, other.Amount0),
		Amount1: new(big.Int).Add(d.Amount1, other.Amount1),
	}
}

// IsZero reports whether both components are zero.
func (d BalanceDelta) IsZero() bool {
	return d.Amount0.Sign() == 0 && d.Amount1.Sign() == 0
}

// FeePair holds unsigned accrued fee amounts per pool currency.
type FeePair struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// NewFeePair returns a zeroed pair.
func NewFeePair() FeePair {
	return FeePair{Amount0: big.NewInt(0), Amount1: big.NewInt(0)}
}

// Clone returns an independent copy of the pair.
func (p FeePair) Clone() FeePair {
	return FeePair{
		Amount0: new(big.Int).Set(p.Amount0),
		Amount1: new(big.Int).Set(p.Amount1),
	}
}

// IsZero reports whether both amounts are zero.
func (p FeePair) IsZero() bool {
	return p.Amount0.Sign() == 0 && p.Amount1.Sign() == 0
}
