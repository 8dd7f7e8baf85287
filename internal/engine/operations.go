package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"flashLedger/internal/fees"
	"flashLedger/internal/hooks"
	"flashLedger/internal/model"
	"flashLedger/internal/pool"
)

// Initialize creates a pool for key at the given starting price and returns
// the derived tick. It may run inside or outside a lock session; inside one,
// a later failure rolls the creation back with the rest of the session.
func (m *PoolManager) Initialize(sender common.Address, key model.PoolKey, sqrtPriceX96 *big.Int, hookData []byte) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, m.fail(err)
	}
	if err := m.hooks.ValidateFor(key.Hooks); err != nil {
		return 0, m.fail(err)
	}
	ctx := hooks.Context{Sender: sender, Key: key, Data: hookData}
	if err := m.dispatch.BeforeInitialize(ctx, sqrtPriceX96); err != nil {
		return 0, m.fail(err)
	}

	id := key.ID()
	if m.registry.Has(id) {
		return 0, m.fail(model.ErrPoolAlreadyInitialized)
	}

	p := pool.New(key)
	if m.cfg.FeeController != nil {
		protocolFee, err := m.cfg.FeeController.ProtocolFeesFor(key)
		if err != nil {
			return 0, m.fail(fmt.Errorf("protocol fee lookup: %w", err))
		}
		if err := protocolFee.Validate(); err != nil {
			return 0, m.fail(err)
		}
		hookFee, err := m.cfg.FeeController.HookFeesFor(key)
		if err != nil {
			return 0, m.fail(fmt.Errorf("hook fee lookup: %w", err))
		}
		if err := hookFee.Validate(); err != nil {
			return 0, m.fail(err)
		}
		p.ProtocolFee, p.HookFee = protocolFee, hookFee
	}

	tick, err := p.Initialize(sqrtPriceX96)
	if err != nil {
		return 0, m.fail(err)
	}
	m.registry.Put(id, p)
	if m.session != nil {
		m.session.created[id] = struct{}{}
	}

	if err := m.dispatch.AfterInitialize(ctx, sqrtPriceX96, tick); err != nil {
		if m.session == nil {
			m.registry.Delete(id)
		}
		return 0, m.fail(err)
	}

	m.emit(model.EventInitialize, id, model.InitializeEventData{
		Currency0:    key.Currency0.Hex(),
		Currency1:    key.Currency1.Hex(),
		Fee:          key.Fee,
		TickSpacing:  key.TickSpacing,
		Hooks:        key.Hooks.Hex(),
		SqrtPriceX96: sqrtPriceX96.String(),
		Tick:         int32(tick),
	})
	return tick, nil
}

// Swap executes a swap against key's pool and books the resulting delta
// against the caller. The beforeSwap hook may override the specified amount.
func (m *PoolManager) Swap(caller common.Address, key model.PoolKey, params model.SwapParams, hookData []byte) (model.BalanceDelta, error) {
	if err := m.requireActive(caller); err != nil {
		return model.BalanceDelta{}, err
	}
	id := key.ID()
	base, ok := m.registry.Get(id)
	if !ok {
		return model.BalanceDelta{}, m.fail(model.ErrPoolNotInitialized)
	}

	ctx := hooks.Context{Sender: caller, Key: key, Data: hookData}
	override, err := m.dispatch.BeforeSwap(ctx, params)
	if err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	if override != nil {
		params.AmountSpecified = override
	}

	swapFee, err := fees.SwapFee(key, m.cfg.FeeResolver)
	if err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	split := fees.SwapSplit(base.ProtocolFee, base.HookFee)

	m.touchPool(id, base)
	work := base.Clone()
	res, err := work.Swap(params, swapFee, split)
	if err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	m.registry.Put(id, work)

	if err := m.deltas.Account(caller, key.Currency0, res.Delta.Amount0); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	if err := m.deltas.Account(caller, key.Currency1, res.Delta.Amount1); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	if res.ProtocolFee.Sign() > 0 {
		m.touchProtocolFees(id)
		accrueAmount(m.protocolFees, id, params.ZeroForOne, res.ProtocolFee)
	}
	if res.HookFee.Sign() > 0 {
		m.touchHookFees(id)
		accrueAmount(m.hookFees, id, params.ZeroForOne, res.HookFee)
	}

	if err := m.dispatch.AfterSwap(ctx, params, res.Delta); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	m.emit(model.EventSwap, id, model.SwapEventData{
		Sender:       caller.Hex(),
		Amount0:      res.Delta.Amount0.String(),
		Amount1:      res.Delta.Amount1.String(),
		SqrtPriceX96: res.SqrtPriceX96.String(),
		Liquidity:    res.Liquidity.String(),
		Tick:         int32(res.Tick),
		Fee:          res.TotalFee.String(),
	})
	return res.Delta, nil
}

// ModifyPosition changes the caller's liquidity on a tick range, settling
// position fees into the returned delta.
func (m *PoolManager) ModifyPosition(caller common.Address, key model.PoolKey, params model.ModifyPositionParams, hookData []byte) (model.BalanceDelta, error) {
	if err := m.requireActive(caller); err != nil {
		return model.BalanceDelta{}, err
	}
	id := key.ID()
	base, ok := m.registry.Get(id)
	if !ok {
		return model.BalanceDelta{}, m.fail(model.ErrPoolNotInitialized)
	}

	ctx := hooks.Context{Sender: caller, Key: key, Data: hookData}
	if err := m.dispatch.BeforeModifyPosition(ctx, params); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	split := fees.WithdrawSplit(base.ProtocolFee, base.HookFee)
	m.touchPool(id, base)
	work := base.Clone()
	res, err := work.ModifyPosition(caller, params, split)
	if err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	m.registry.Put(id, work)

	if err := m.deltas.Account(caller, key.Currency0, res.Delta.Amount0); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	if err := m.deltas.Account(caller, key.Currency1, res.Delta.Amount1); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	if !res.ProtocolFees.IsZero() {
		m.touchProtocolFees(id)
		accruePair(m.protocolFees, id, res.ProtocolFees)
	}
	if !res.HookFees.IsZero() {
		m.touchHookFees(id)
		accruePair(m.hookFees, id, res.HookFees)
	}

	if err := m.dispatch.AfterModifyPosition(ctx, params, res.Delta); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	liquidityDelta := params.LiquidityDelta
	if liquidityDelta == nil {
		liquidityDelta = big.NewInt(0)
	}
	m.emit(model.EventModifyPosition, id, model.ModifyPositionEventData{
		Sender:         caller.Hex(),
		TickLower:      int32(params.TickLower),
		TickUpper:      int32(params.TickUpper),
		LiquidityDelta: liquidityDelta.String(),
		Amount0:        res.Delta.Amount0.String(),
		Amount1:        res.Delta.Amount1.String(),
	})
	return res.Delta, nil
}

// Donate pays the caller's amounts to the pool's in-range liquidity.
func (m *PoolManager) Donate(caller common.Address, key model.PoolKey, amount0, amount1 *big.Int, hookData []byte) (model.BalanceDelta, error) {
	if err := m.requireActive(caller); err != nil {
		return model.BalanceDelta{}, err
	}
	id := key.ID()
	base, ok := m.registry.Get(id)
	if !ok {
		return model.BalanceDelta{}, m.fail(model.ErrPoolNotInitialized)
	}

	ctx := hooks.Context{Sender: caller, Key: key, Data: hookData}
	if err := m.dispatch.BeforeDonate(ctx, amount0, amount1); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	m.touchPool(id, base)
	work := base.Clone()
	delta, err := work.Donate(amount0, amount1)
	if err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	m.registry.Put(id, work)

	if err := m.deltas.Account(caller, key.Currency0, delta.Amount0); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	if err := m.deltas.Account(caller, key.Currency1, delta.Amount1); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}

	if err := m.dispatch.AfterDonate(ctx, amount0, amount1); err != nil {
		return model.BalanceDelta{}, m.fail(err)
	}
	return delta, nil
}

// Take transfers amount of currency out of custody to the recipient and
// debits the caller's delta.
func (m *PoolManager) Take(caller common.Address, currency, to common.Address, amount *big.Int) error {
	if err := m.requireActive(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return m.fail(model.ErrNegativeAmount)
	}
	if err := m.deltas.Account(caller, currency, new(big.Int).Neg(amount)); err != nil {
		return m.fail(err)
	}
	if err := m.vault.TransferOut(currency, to, amount); err != nil {
		return m.fail(err)
	}
	return nil
}

// Settle credits the caller's delta with the currency received by the vault
// since the previous observation and returns the credited amount.
func (m *PoolManager) Settle(caller common.Address, currency common.Address) (*big.Int, error) {
	if err := m.requireActive(caller); err != nil {
		return nil, err
	}
	received, err := m.vault.ObserveReceived(currency)
	if err != nil {
		return nil, m.fail(fmt.Errorf("observe received: %w", err))
	}
	if received.Sign() < 0 {
		return nil, m.fail(model.ErrNegativeAmount)
	}
	if err := m.deltas.Account(caller, currency, received); err != nil {
		return nil, m.fail(err)
	}
	return received, nil
}

// Mint credits the recipient's claim balance and debits the caller's delta.
func (m *PoolManager) Mint(caller common.Address, currency, to common.Address, amount *big.Int) error {
	if err := m.requireActive(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return m.fail(model.ErrNegativeAmount)
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return m.fail(model.ErrBalanceOverflow)
	}
	m.touchClaim(to, currency)
	if err := m.claims.Mint(to, currency, value); err != nil {
		return m.fail(err)
	}
	if err := m.deltas.Account(caller, currency, new(big.Int).Neg(amount)); err != nil {
		return m.fail(err)
	}
	return nil
}

// Burn debits the caller's claim balance and credits the caller's delta.
func (m *PoolManager) Burn(caller common.Address, currency common.Address, amount *big.Int) error {
	if err := m.requireActive(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return m.fail(model.ErrNegativeAmount)
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return m.fail(model.ErrBalanceOverflow)
	}
	m.touchClaim(caller, currency)
	if err := m.claims.Burn(caller, currency, value); err != nil {
		return m.fail(err)
	}
	if err := m.deltas.Account(caller, currency, amount); err != nil {
		return m.fail(err)
	}
	return nil
}

func accruePair(table map[model.PoolId]model.FeePair, id model.PoolId, add model.FeePair) {
	pair, ok := table[id]
	if !ok {
		pair = model.NewFeePair()
		table[id] = pair
	}
	pair.Amount0.Add(pair.Amount0, add.Amount0)
	pair.Amount1.Add(pair.Amount1, add.Amount1)
}

func accrueAmount(table map[model.PoolId]model.FeePair, id model.PoolId, zeroForOne bool, amount *big.Int) {
	pair, ok := table[id]
	if !ok {
		pair = model.NewFeePair()
		table[id] = pair
	}
	if zeroForOne {
		pair.Amount0.Add(pair.Amount0, amount)
	} else {
		pair.Amount1.Add(pair.Amount1, amount)
	}
}
