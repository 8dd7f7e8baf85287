package ticks

import (
	"errors"
	"math/big"
	"testing"

	"github.com/daoleno/uniswapv3-sdk/utils"

	"flashLedger/internal/model"
)

func mustUpdate(t *testing.T, m *Manager, tick, current int, delta int64, upper bool) bool {
	t.Helper()
	flipped, err := m.Update(tick, current, big.NewInt(delta), big.NewInt(0), big.NewInt(0), upper, MaxLiquidityPerTick(1))
	if err != nil {
		t.Fatalf("update tick %d: %v", tick, err)
	}
	return flipped
}

func TestUpdateFlipsOnZeroCrossings(t *testing.T) {
	m := NewManager()

	if !mustUpdate(t, m, -60, 0, 100, false) {
		t.Fatalf("first liquidity should flip the tick on")
	}
	if mustUpdate(t, m, -60, 0, 50, false) {
		t.Fatalf("adding to a live tick should not flip")
	}
	if mustUpdate(t, m, -60, 0, -50, false) {
		t.Fatalf("partial removal should not flip")
	}
	if !mustUpdate(t, m, -60, 0, -100, false) {
		t.Fatalf("removing the last liquidity should flip the tick off")
	}
}

func TestUpdateNetSignByBoundary(t *testing.T) {
	m := NewManager()
	mustUpdate(t, m, -60, 0, 100, false)
	mustUpdate(t, m, 60, 0, 100, true)

	lower := m.Get(-60)
	if lower.LiquidityNet.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("lower net: got %v, want 100", lower.LiquidityNet)
	}
	upper := m.Get(60)
	if upper.LiquidityNet.Cmp(big.NewInt(-100)) != 0 {
		t.Fatalf("upper net: got %v, want -100", upper.LiquidityNet)
	}
}

func TestUpdateSeedsFeeGrowthOutside(t *testing.T) {
	m := NewManager()
	global0 := big.NewInt(111)
	global1 := big.NewInt(222)

	if _, err := m.Update(-10, 0, big.NewInt(5), global0, global1, false, MaxLiquidityPerTick(1)); err != nil {
		t.Fatalf("update: %v", err)
	}
	below := m.Get(-10)
	if below.FeeGrowthOutside0X128.Cmp(global0) != 0 || below.FeeGrowthOutside1X128.Cmp(global1) != 0 {
		t.Fatalf("tick at or below current must seed outside growth, got %v/%v", below.FeeGrowthOutside0X128, below.FeeGrowthOutside1X128)
	}

	if _, err := m.Update(10, 0, big.NewInt(5), global0, global1, true, MaxLiquidityPerTick(1)); err != nil {
		t.Fatalf("update: %v", err)
	}
	above := m.Get(10)
	if above.FeeGrowthOutside0X128.Sign() != 0 || above.FeeGrowthOutside1X128.Sign() != 0 {
		t.Fatalf("tick above current must start with zero outside growth")
	}
}

func TestUpdateBounds(t *testing.T) {
	m := NewManager()
	if _, err := m.Update(0, 0, big.NewInt(-1), big.NewInt(0), big.NewInt(0), false, MaxLiquidityPerTick(1)); !errors.Is(err, model.ErrLiquidityUnderflow) {
		t.Fatalf("underflow: got %v", err)
	}

	tiny := big.NewInt(10)
	if _, err := m.Update(0, 0, big.NewInt(11), big.NewInt(0), big.NewInt(0), false, tiny); !errors.Is(err, model.ErrLiquidityOverflow) {
		t.Fatalf("overflow: got %v", err)
	}
}

func TestNextInitialized(t *testing.T) {
	m := NewManager()
	for _, tick := range []int{-120, -60, 60, 180} {
		mustUpdate(t, m, tick, 0, 100, false)
	}

	cases := []struct {
		from        int
		lte         bool
		want        int
		initialized bool
	}{
		{0, true, -60, true},
		{-60, true, -60, true},
		{-61, true, -120, true},
		{-121, true, utils.MinTick, false},
		{0, false, 60, true},
		{60, false, 180, true},
		{180, false, utils.MaxTick, false},
	}
	for _, tc := range cases {
		got, init := m.NextInitialized(tc.from, tc.lte)
		if got != tc.want || init != tc.initialized {
			t.Fatalf("NextInitialized(%d, lte=%v): got (%d, %v), want (%d, %v)",
				tc.from, tc.lte, got, init, tc.want, tc.initialized)
		}
	}
}

func TestClearRemovesTick(t *testing.T) {
	m := NewManager()
	mustUpdate(t, m, 60, 0, 100, false)
	m.Clear(60)

	if m.Count() != 0 {
		t.Fatalf("tick survived clear")
	}
	if got, init := m.NextInitialized(100, true); init {
		t.Fatalf("cleared tick still found: %d", got)
	}
}

func TestCrossFlipsOutsideGrowth(t *testing.T) {
	m := NewManager()
	mustUpdate(t, m, 0, 10, 100, false)

	global0 := big.NewInt(1000)
	global1 := big.NewInt(500)
	net := m.Cross(0, global0, global1)
	if net.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("cross net: got %v, want 100", net)
	}
	info := m.Get(0)
	// Outside was seeded with 0 at creation, so after crossing it holds the
	// full global value.
	if info.FeeGrowthOutside0X128.Cmp(global0) != 0 {
		t.Fatalf("outside0 after cross: got %v, want %v", info.FeeGrowthOutside0X128, global0)
	}

	// Crossing back restores the original outside value.
	m.Cross(0, global0, global1)
	info = m.Get(0)
	if info.FeeGrowthOutside0X128.Sign() != 0 {
		t.Fatalf("outside0 after double cross: got %v, want 0", info.FeeGrowthOutside0X128)
	}
}

func TestFeeGrowthInsideCurrentInRange(t *testing.T) {
	m := NewManager()
	mustUpdate(t, m, -60, 0, 100, false)
	mustUpdate(t, m, 60, 0, 100, true)

	global0 := big.NewInt(7777)
	global1 := big.NewInt(8888)
	inside0, inside1 := m.FeeGrowthInside(-60, 60, 0, global0, global1)
	if inside0.Cmp(global0) != 0 || inside1.Cmp(global1) != 0 {
		t.Fatalf("inside growth with zero outside values: got %v/%v, want %v/%v", inside0, inside1, global0, global1)
	}

	// With the current tick below the range nothing accrued inside: all
	// growth counts as below the lower tick.
	inside0, inside1 = m.FeeGrowthInside(-60, 60, -100, global0, global1)
	if inside0.Sign() != 0 || inside1.Sign() != 0 {
		t.Fatalf("inside growth below range: got %v/%v, want 0/0", inside0, inside1)
	}
}

func TestMaxLiquidityPerTick(t *testing.T) {
	// tickSpacing 60 spans 29575 usable ticks: floor(887272/60) on each side
	// plus the zero tick.
	want := new(big.Int).Div(maxUint128, big.NewInt(29575))
	if got := MaxLiquidityPerTick(60); got.Cmp(want) != 0 {
		t.Fatalf("spacing 60: got %v, want %v", got, want)
	}
	if MaxLiquidityPerTick(60).Cmp(MaxLiquidityPerTick(1)) <= 0 {
		t.Fatalf("wider spacing must allow more liquidity per tick")
	}
}

func TestManagerClone(t *testing.T) {
	m := NewManager()
	mustUpdate(t, m, -60, 0, 100, false)

	clone := m.Clone()
	mustUpdate(t, m, -60, 0, 50, false)

	if clone.Get(-60).LiquidityGross.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("clone shares state with original")
	}
}
