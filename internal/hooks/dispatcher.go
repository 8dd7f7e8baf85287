package hooks

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// Dispatcher routes an operation's lifecycle points to the pool's hook,
// skipping points the hook address does not declare and rejecting bad
// acknowledgments.
type Dispatcher struct {
	reg *Registry
}

func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

func (d *Dispatcher) lookup(addr common.Address) (Registration, bool, error) {
	if addr == (common.Address{}) {
		return Registration{}, false, nil
	}
	reg, ok := d.reg.Lookup(addr)
	if !ok {
		return Registration{}, false, fmt.Errorf("unregistered hook %s: %w", addr.Hex(), model.ErrHookAddressInvalid)
	}
	return reg, true, nil
}

func ackErr(point string, got, want Ack) error {
	if got == want {
		return nil
	}
	return fmt.Errorf("%s returned %x, want %x: %w", point, got, want, model.ErrInvalidHookResponse)
}

func (d *Dispatcher) BeforeInitialize(ctx Context, sqrtPriceX96 *big.Int) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.BeforeInitialize {
		return err
	}
	ack, err := reg.Hook.BeforeInitialize(ctx, sqrtPriceX96)
	if err != nil {
		return fmt.Errorf("beforeInitialize: %w", err)
	}
	return ackErr("beforeInitialize", ack, AckBeforeInitialize)
}

func (d *Dispatcher) AfterInitialize(ctx Context, sqrtPriceX96 *big.Int, tick int) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.AfterInitialize {
		return err
	}
	ack, err := reg.Hook.AfterInitialize(ctx, sqrtPriceX96, tick)
	if err != nil {
		return fmt.Errorf("afterInitialize: %w", err)
	}
	return ackErr("afterInitialize", ack, AckAfterInitialize)
}

func (d *Dispatcher) BeforeModifyPosition(ctx Context, params model.ModifyPositionParams) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.BeforeModifyPosition {
		return err
	}
	ack, err := reg.Hook.BeforeModifyPosition(ctx, params)
	if err != nil {
		return fmt.Errorf("beforeModifyPosition: %w", err)
	}
	return ackErr("beforeModifyPosition", ack, AckBeforeModifyPosition)
}

func (d *Dispatcher) AfterModifyPosition(ctx Context, params model.ModifyPositionParams, delta model.BalanceDelta) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.AfterModifyPosition {
		return err
	}
	ack, err := reg.Hook.AfterModifyPosition(ctx, params, delta)
	if err != nil {
		return fmt.Errorf("afterModifyPosition: %w", err)
	}
	return ackErr("afterModifyPosition", ack, AckAfterModifyPosition)
}

// BeforeSwap returns a replacement for the swap's specified amount when the
// hook overrides it, nil otherwise.
func (d *Dispatcher) BeforeSwap(ctx Context, params model.SwapParams) (*big.Int, error) {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.BeforeSwap {
		return nil, err
	}
	ack, override, err := reg.Hook.BeforeSwap(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("beforeSwap: %w", err)
	}
	if err := ackErr("beforeSwap", ack, AckBeforeSwap); err != nil {
		return nil, err
	}
	return override, nil
}

func (d *Dispatcher) AfterSwap(ctx Context, params model.SwapParams, delta model.BalanceDelta) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.AfterSwap {
		return err
	}
	ack, err := reg.Hook.AfterSwap(ctx, params, delta)
	if err != nil {
		return fmt.Errorf("afterSwap: %w", err)
	}
	return ackErr("afterSwap", ack, AckAfterSwap)
}

func (d *Dispatcher) BeforeDonate(ctx Context, amount0, amount1 *big.Int) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.BeforeDonate {
		return err
	}
	ack, err := reg.Hook.BeforeDonate(ctx, amount0, amount1)
	if err != nil {
		return fmt.Errorf("beforeDonate: %w", err)
	}
	return ackErr("beforeDonate", ack, AckBeforeDonate)
}

func (d *Dispatcher) AfterDonate(ctx Context, amount0, amount1 *big.Int) error {
	reg, ok, err := d.lookup(ctx.Key.Hooks)
	if err != nil || !ok || !reg.Flags.AfterDonate {
		return err
	}
	ack, err := reg.Hook.AfterDonate(ctx, amount0, amount1)
	if err != nil {
		return fmt.Errorf("afterDonate: %w", err)
	}
	return ackErr("afterDonate", ack, AckAfterDonate)
}
