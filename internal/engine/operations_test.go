package engine

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"flashLedger/internal/hooks"
	"flashLedger/internal/model"
)

func TestInitializeValidation(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	key := testPoolKey()
	if _, err := m.Initialize(alice, key, q96, nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := m.Initialize(alice, key, q96, nil); !errors.Is(err, model.ErrPoolAlreadyInitialized) {
		t.Fatalf("second initialize error = %v, want ErrPoolAlreadyInitialized", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.PoolKey)
		want   error
	}{
		{"reversed currencies", func(k *model.PoolKey) { k.Currency0, k.Currency1 = k.Currency1, k.Currency0 }, model.ErrCurrenciesOutOfOrder},
		{"equal currencies", func(k *model.PoolKey) { k.Currency1 = k.Currency0 }, model.ErrCurrenciesOutOfOrder},
		{"fee too large", func(k *model.PoolKey) { k.Fee = model.MaxSwapFee + 1 }, model.ErrFeeTooLarge},
		{"tick spacing zero", func(k *model.PoolKey) { k.TickSpacing = 0 }, model.ErrTickSpacingTooSmall},
		{"tick spacing huge", func(k *model.PoolKey) { k.TickSpacing = model.MaxTickSpacing + 1 }, model.ErrTickSpacingTooLarge},
		{"unregistered hook", func(k *model.PoolKey) {
			k.Hooks = hooks.AddressWithFlags(hooks.Flags{BeforeSwap: true}, 0x01)
		}, model.ErrHookAddressInvalid},
	}
	for _, tc := range cases {
		k := testPoolKey()
		tc.mutate(&k)
		if _, err := m.Initialize(alice, k, q96, nil); !errors.Is(err, tc.want) {
			t.Fatalf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}

	if _, err := m.Initialize(alice, testPoolKey(), nil, nil); !errors.Is(err, model.ErrPoolAlreadyInitialized) {
		// Registry check precedes price validation for an existing key; use a
		// fresh key for the price path.
		t.Fatalf("error = %v", err)
	}
	fresh := testPoolKey()
	fresh.Fee = 500
	fresh.TickSpacing = 10
	if _, err := m.Initialize(alice, fresh, big.NewInt(0), nil); !errors.Is(err, model.ErrInvalidSqrtPrice) {
		t.Fatalf("zero price error = %v, want ErrInvalidSqrtPrice", err)
	}
}

func TestHookDispatchOnlyDeclaredPoints(t *testing.T) {
	m, v, _ := newTestManager(t, Config{})
	hook := &testHook{}
	addr := hooks.AddressWithFlags(hooks.Flags{BeforeSwap: true}, 0x01)
	if err := m.Hooks().Register(addr, hook, hooks.Flags{BeforeSwap: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	key := testPoolKey()
	key.Hooks = addr
	setupPool(t, m, v, key, big.NewInt(1_000_000_000_000_000_000))

	// No initialize flags declared, so initialization never called the hook.
	if len(hook.calls) != 0 {
		t.Fatalf("calls before swap = %v, want none", hook.calls)
	}

	_, err := m.Lock(bob, nil, func([]byte) ([]byte, error) {
		if _, err := m.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1_000_000),
		}, nil); err != nil {
			return nil, err
		}
		settleAll(t, m, v, bob, usd, weth)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	if !reflect.DeepEqual(hook.calls, []string{"beforeSwap"}) {
		t.Fatalf("hook calls = %v, want beforeSwap only", hook.calls)
	}
}

func TestHookSwapAmountOverride(t *testing.T) {
	m, v, _ := newTestManager(t, Config{})
	hook := &testHook{override: big.NewInt(500)}
	addr := hooks.AddressWithFlags(hooks.Flags{BeforeSwap: true}, 0x02)
	if err := m.Hooks().Register(addr, hook, hooks.Flags{BeforeSwap: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	key := testPoolKey()
	key.Hooks = addr
	setupPool(t, m, v, key, big.NewInt(1_000_000_000_000_000_000))

	_, err := m.Lock(bob, nil, func([]byte) ([]byte, error) {
		delta, err := m.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1_000_000),
		}, nil)
		if err != nil {
			return nil, err
		}
		if delta.Amount0.Cmp(big.NewInt(-500)) != 0 {
			t.Fatalf("overridden swap owes %s, want 500", new(big.Int).Neg(delta.Amount0))
		}
		settleAll(t, m, v, bob, usd, weth)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
}

func TestHookBadAckPoisonsSession(t *testing.T) {
	m, v, _ := newTestManager(t, Config{})
	hook := &testHook{badAck: true}
	addr := hooks.AddressWithFlags(hooks.Flags{BeforeSwap: true}, 0x03)
	if err := m.Hooks().Register(addr, hook, hooks.Flags{BeforeSwap: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	key := testPoolKey()
	key.Hooks = addr
	setupPool(t, m, v, key, big.NewInt(1_000_000_000_000_000_000))

	_, err := m.Lock(bob, nil, func([]byte) ([]byte, error) {
		_, swapErr := m.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1000),
		}, nil)
		if !errors.Is(swapErr, model.ErrInvalidHookResponse) {
			t.Fatalf("bad ack error = %v, want ErrInvalidHookResponse", swapErr)
		}
		return nil, nil
	})
	if !errors.Is(err, model.ErrInvalidHookResponse) {
		t.Fatalf("release error = %v, want ErrInvalidHookResponse", err)
	}
}

func TestHookInitializeLifecycle(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	hook := &testHook{}
	flags := hooks.Flags{BeforeInitialize: true, AfterInitialize: true}
	addr := hooks.AddressWithFlags(flags, 0x04)
	if err := m.Hooks().Register(addr, hook, flags); err != nil {
		t.Fatalf("register: %v", err)
	}

	key := testPoolKey()
	key.Hooks = addr
	if _, err := m.Initialize(alice, key, q96, nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !reflect.DeepEqual(hook.calls, []string{"beforeInitialize", "afterInitialize"}) {
		t.Fatalf("hook calls = %v", hook.calls)
	}
}

func TestDynamicFeeResolution(t *testing.T) {
	key := testPoolKey()
	key.Fee = model.DynamicFeeFlag

	// Without a resolver the swap cannot price itself.
	m, v, _ := newTestManager(t, Config{})
	setupPool(t, m, v, key, big.NewInt(1_000_000_000_000_000_000))
	_, err := m.Lock(bob, nil, func([]byte) ([]byte, error) {
		_, swapErr := m.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1000),
		}, nil)
		if !errors.Is(swapErr, model.ErrDynamicFeeUnavailable) {
			t.Fatalf("swap error = %v, want ErrDynamicFeeUnavailable", swapErr)
		}
		return nil, nil
	})
	if !errors.Is(err, model.ErrDynamicFeeUnavailable) {
		t.Fatalf("release error = %v", err)
	}

	// With one, the resolved rate is charged.
	m2, v2, _ := newTestManager(t, Config{FeeResolver: &staticResolver{fee: 500}})
	setupPool(t, m2, v2, key, big.NewInt(1_000_000_000_000_000_000))
	_, err = m2.Lock(bob, nil, func([]byte) ([]byte, error) {
		delta, swapErr := m2.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1_000_000),
		}, nil)
		if swapErr != nil {
			return nil, swapErr
		}
		if delta.Amount0.Cmp(big.NewInt(-1_000_000)) != 0 {
			t.Fatalf("input consumed = %s, want 1000000", new(big.Int).Neg(delta.Amount0))
		}
		settleAll(t, m2, v2, bob, usd, weth)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("dynamic swap lock: %v", err)
	}
}

func TestMintBurnRoundTrip(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})

	_, err := m.Lock(alice, nil, func([]byte) ([]byte, error) {
		if err := m.Mint(alice, usd, alice, big.NewInt(100)); err != nil {
			return nil, err
		}
		if got := m.ClaimBalance(alice, usd); got.Cmp(big.NewInt(100)) != 0 {
			t.Fatalf("claim balance = %s, want 100", got)
		}
		if got := m.CurrencyDelta(alice, usd); got.Cmp(big.NewInt(-100)) != 0 {
			t.Fatalf("delta after mint = %s, want -100", got)
		}
		if err := m.Burn(alice, usd, big.NewInt(100)); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if got := m.ClaimBalance(alice, usd); got.Sign() != 0 {
		t.Fatalf("claim balance after burn = %s, want 0", got)
	}
}

func TestBurnBeyondBalancePoisons(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	_, err := m.Lock(alice, nil, func([]byte) ([]byte, error) {
		burnErr := m.Burn(alice, usd, big.NewInt(5))
		if !errors.Is(burnErr, model.ErrInsufficientBalance) {
			t.Fatalf("burn error = %v, want ErrInsufficientBalance", burnErr)
		}
		return nil, nil
	})
	if !errors.Is(err, model.ErrInsufficientBalance) {
		t.Fatalf("release error = %v", err)
	}
}

func TestNegativeAmountsRejected(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	_, err := m.Lock(alice, nil, func([]byte) ([]byte, error) {
		takeErr := m.Take(alice, usd, alice, big.NewInt(-1))
		if !errors.Is(takeErr, model.ErrNegativeAmount) {
			t.Fatalf("negative take error = %v, want ErrNegativeAmount", takeErr)
		}
		return nil, nil
	})
	if !errors.Is(err, model.ErrNegativeAmount) {
		t.Fatalf("release error = %v", err)
	}
}

func TestEmittedEventPayloads(t *testing.T) {
	m, v, sink := newTestManager(t, Config{})
	key := testPoolKey()
	id := setupPool(t, m, v, key, big.NewInt(1_000_000_000_000_000_000))

	_, err := m.Lock(bob, nil, func([]byte) ([]byte, error) {
		if _, err := m.Swap(bob, key, model.SwapParams{
			ZeroForOne: true, AmountSpecified: big.NewInt(1_000_000),
		}, nil); err != nil {
			return nil, err
		}
		settleAll(t, m, v, bob, usd, weth)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	events := sink.all()
	if len(events) != 3 {
		t.Fatalf("events = %d, want Initialize, ModifyPosition, Swap", len(events))
	}

	init, ok := events[0].Decoded.(model.InitializeEventData)
	if !ok {
		t.Fatalf("initialize payload type %T", events[0].Decoded)
	}
	if init.Currency0 != usd.Hex() || init.Currency1 != weth.Hex() || init.Fee != 3000 || init.Tick != 0 {
		t.Fatalf("initialize payload = %+v", init)
	}
	if events[0].PoolID != id.Hex() {
		t.Fatalf("initialize pool id = %s, want %s", events[0].PoolID, id.Hex())
	}

	swap, ok := events[2].Decoded.(model.SwapEventData)
	if !ok {
		t.Fatalf("swap payload type %T", events[2].Decoded)
	}
	if swap.Sender != bob.Hex() {
		t.Fatalf("swap sender = %s, want %s", swap.Sender, bob.Hex())
	}
	if swap.Amount0 != "-1000000" {
		t.Fatalf("swap amount0 = %s, want -1000000", swap.Amount0)
	}
	if swap.Fee == "" || swap.Fee == "0" {
		t.Fatalf("swap fee = %q, want non-zero", swap.Fee)
	}
}
