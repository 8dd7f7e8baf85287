package ticks

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

var q128 = new(big.Int).Lsh(big.NewInt(1), 128)

// PositionKey identifies a position by its owner and tick range.
type PositionKey struct {
	Owner     common.Address
	TickLower int
	TickUpper int
}

// Position is the state of one liquidity position.
type Position struct {
	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
}

func newPosition() *Position {
	return &Position{
		Liquidity:                big.NewInt(0),
		FeeGrowthInside0LastX128: big.NewInt(0),
		FeeGrowthInside1LastX128: big.NewInt(0),
	}
}

func (p *Position) clone() *Position {
	return &Position{
		Liquidity:                new(big.Int).Set(p.Liquidity),
		FeeGrowthInside0LastX128: new(big.Int).Set(p.FeeGrowthInside0LastX128),
		FeeGrowthInside1LastX128: new(big.Int).Set(p.FeeGrowthInside1LastX128),
	}
}

// Positions stores the liquidity positions of one pool.
type Positions struct {
	m map[PositionKey]*Position
}

func NewPositions() *Positions {
	return &Positions{m: make(map[PositionKey]*Position)}
}

// Get returns a copy of a position's state.
func (ps *Positions) Get(key PositionKey) (Position, bool) {
	pos, ok := ps.m[key]
	if !ok {
		return *newPosition(), false
	}
	return *pos.clone(), true
}

// Len returns the number of stored positions.
func (ps *Positions) Len() int {
	return len(ps.m)
}

// Update applies a liquidity change to a position and settles its share of
// fee growth since the last touch. The returned amounts are the fees owed to
// the owner, computed on the liquidity held before the change and rounded
// down.
func (ps *Positions) Update(key PositionKey, liquidityDelta, feeGrowthInside0X128, feeGrowthInside1X128 *big.Int) (*big.Int, *big.Int, error) {
	pos, ok := ps.m[key]
	if !ok {
		pos = newPosition()
	}

	if liquidityDelta.Sign() == 0 && pos.Liquidity.Sign() == 0 {
		return nil, nil, model.ErrEmptyPosition
	}

	next, err := AddDelta(pos.Liquidity, liquidityDelta)
	if err != nil {
		return nil, nil, err
	}

	feesOwed0 := new(big.Int).Mul(subIn256(feeGrowthInside0X128, pos.FeeGrowthInside0LastX128), pos.Liquidity)
	feesOwed0.Div(feesOwed0, q128)
	feesOwed1 := new(big.Int).Mul(subIn256(feeGrowthInside1X128, pos.FeeGrowthInside1LastX128), pos.Liquidity)
	feesOwed1.Div(feesOwed1, q128)

	pos.Liquidity = next
	pos.FeeGrowthInside0LastX128 = new(big.Int).Set(feeGrowthInside0X128)
	pos.FeeGrowthInside1LastX128 = new(big.Int).Set(feeGrowthInside1X128)
	ps.m[key] = pos

	return feesOwed0, feesOwed1, nil
}

// Clone returns an independent deep copy.
func (ps *Positions) Clone() *Positions {
	out := NewPositions()
	for key, pos := range ps.m {
		out.m[key] = pos.clone()
	}
	return out
}
