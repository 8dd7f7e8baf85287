// Package ticks tracks initialized ticks and liquidity positions for one
// pool: gross/net liquidity per tick, fee growth outside accumulators, and
// ordered lookup of the next initialized tick in either direction.
package ticks

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/daoleno/uniswapv3-sdk/utils"

	"flashLedger/internal/model"
)

// Info is the per-tick bookkeeping record.
type Info struct {
	LiquidityGross        *big.Int
	LiquidityNet          *big.Int
	FeeGrowthOutside0X128 *big.Int
	FeeGrowthOutside1X128 *big.Int
}

func newInfo() *Info {
	return &Info{
		LiquidityGross:        big.NewInt(0),
		LiquidityNet:          big.NewInt(0),
		FeeGrowthOutside0X128: big.NewInt(0),
		FeeGrowthOutside1X128: big.NewInt(0),
	}
}

func (i *Info) clone() *Info {
	return &Info{
		LiquidityGross:        new(big.Int).Set(i.LiquidityGross),
		LiquidityNet:          new(big.Int).Set(i.LiquidityNet),
		FeeGrowthOutside0X128: new(big.Int).Set(i.FeeGrowthOutside0X128),
		FeeGrowthOutside1X128: new(big.Int).Set(i.FeeGrowthOutside1X128),
	}
}

// Manager indexes the ticks of one pool. The sorted slice mirrors the set of
// ticks whose gross liquidity is non-zero and is what directional lookups
// consult.
type Manager struct {
	info   map[int]*Info
	sorted []int
}

func NewManager() *Manager {
	return &Manager{info: make(map[int]*Info)}
}

// Get returns the record for a tick, or a zeroed record when absent.
func (m *Manager) Get(tick int) Info {
	if info, ok := m.info[tick]; ok {
		return *info.clone()
	}
	return *newInfo()
}

// Count returns the number of tracked ticks.
func (m *Manager) Count() int {
	return len(m.sorted)
}

// Update applies a liquidity change to one tick boundary and reports whether
// the tick flipped between initialized and uninitialized. Fee growth outside
// is seeded from the global accumulators the first time a tick at or below
// the current tick is created.
func (m *Manager) Update(tick, currentTick int, liquidityDelta, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int, upper bool, maxLiquidity *big.Int) (bool, error) {
	info, ok := m.info[tick]
	if !ok {
		info = newInfo()
		m.info[tick] = info
	}

	grossBefore := info.LiquidityGross
	grossAfter, err := AddDelta(grossBefore, liquidityDelta)
	if err != nil {
		return false, fmt.Errorf("tick %d: %w", tick, err)
	}
	if grossAfter.Cmp(maxLiquidity) > 0 {
		return false, fmt.Errorf("tick %d: %w", tick, model.ErrLiquidityOverflow)
	}

	flipped := (grossAfter.Sign() == 0) != (grossBefore.Sign() == 0)

	if grossBefore.Sign() == 0 {
		if tick <= currentTick {
			info.FeeGrowthOutside0X128 = new(big.Int).Set(feeGrowthGlobal0X128)
			info.FeeGrowthOutside1X128 = new(big.Int).Set(feeGrowthGlobal1X128)
		}
	}

	info.LiquidityGross = grossAfter
	if upper {
		info.LiquidityNet = new(big.Int).Sub(info.LiquidityNet, liquidityDelta)
	} else {
		info.LiquidityNet = new(big.Int).Add(info.LiquidityNet, liquidityDelta)
	}

	if flipped && grossAfter.Sign() > 0 {
		m.insert(tick)
	}
	return flipped, nil
}

// Clear drops a tick that flipped to zero gross liquidity.
func (m *Manager) Clear(tick int) {
	delete(m.info, tick)
	idx := sort.SearchInts(m.sorted, tick)
	if idx < len(m.sorted) && m.sorted[idx] == tick {
		m.sorted = append(m.sorted[:idx], m.sorted[idx+1:]...)
	}
}

func (m *Manager) insert(tick int) {
	idx := sort.SearchInts(m.sorted, tick)
	if idx < len(m.sorted) && m.sorted[idx] == tick {
		return
	}
	m.sorted = append(m.sorted, 0)
	copy(m.sorted[idx+1:], m.sorted[idx:])
	m.sorted[idx] = tick
}

// NextInitialized returns the nearest initialized tick at or below from when
// lte is true, or strictly above from otherwise. When none exists the global
// tick bound for that direction is returned with initialized false.
func (m *Manager) NextInitialized(from int, lte bool) (int, bool) {
	idx := sort.SearchInts(m.sorted, from+1)
	if lte {
		if idx > 0 {
			return m.sorted[idx-1], true
		}
		return utils.MinTick, false
	}
	if idx < len(m.sorted) {
		return m.sorted[idx], true
	}
	return utils.MaxTick, false
}

// Cross transitions a tick during a swap, flipping its outside accumulators,
// and returns the net liquidity change to apply.
func (m *Manager) Cross(tick int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int) *big.Int {
	info, ok := m.info[tick]
	if !ok {
		return big.NewInt(0)
	}
	info.FeeGrowthOutside0X128 = subIn256(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = subIn256(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	return new(big.Int).Set(info.LiquidityNet)
}

// FeeGrowthInside computes the fee growth accumulated inside a tick range,
// in the same wrapping arithmetic the outside accumulators use.
func (m *Manager) FeeGrowthInside(lower, upper, current int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 *big.Int) (*big.Int, *big.Int) {
	lowerInfo := m.Get(lower)
	upperInfo := m.Get(upper)

	var below0, below1 *big.Int
	if current >= lower {
		below0 = lowerInfo.FeeGrowthOutside0X128
		below1 = lowerInfo.FeeGrowthOutside1X128
	} else {
		below0 = subIn256(feeGrowthGlobal0X128, lowerInfo.FeeGrowthOutside0X128)
		below1 = subIn256(feeGrowthGlobal1X128, lowerInfo.FeeGrowthOutside1X128)
	}

	var above0, above1 *big.Int
	if current < upper {
		above0 = upperInfo.FeeGrowthOutside0X128
		above1 = upperInfo.FeeGrowthOutside1X128
	} else {
		above0 = subIn256(feeGrowthGlobal0X128, upperInfo.FeeGrowthOutside0X128)
		above1 = subIn256(feeGrowthGlobal1X128, upperInfo.FeeGrowthOutside1X128)
	}

	inside0 := subIn256(subIn256(feeGrowthGlobal0X128, below0), above0)
	inside1 := subIn256(subIn256(feeGrowthGlobal1X128, below1), above1)
	return inside0, inside1
}

// Clone returns an independent deep copy.
func (m *Manager) Clone() *Manager {
	out := &Manager{
		info:   make(map[int]*Info, len(m.info)),
		sorted: append([]int(nil), m.sorted...),
	}
	for tick, info := range m.info {
		out.info[tick] = info.clone()
	}
	return out
}
