package engine

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// SetProtocolFees re-pulls the packed protocol fee for an existing pool from
// the fee controller. Without a controller the fee resets to zero.
func (m *PoolManager) SetProtocolFees(key model.PoolKey) (model.PackedFee, error) {
	id := key.ID()
	base, ok := m.registry.Get(id)
	if !ok {
		return 0, m.fail(model.ErrPoolNotInitialized)
	}
	var fee model.PackedFee
	if m.cfg.FeeController != nil {
		pulled, err := m.cfg.FeeController.ProtocolFeesFor(key)
		if err != nil {
			return 0, m.fail(fmt.Errorf("protocol fee lookup: %w", err))
		}
		if err := pulled.Validate(); err != nil {
			return 0, m.fail(err)
		}
		fee = pulled
	}
	m.touchPool(id, base)
	work := base.Clone()
	work.ProtocolFee = fee
	m.registry.Put(id, work)
	return fee, nil
}

// SetHookFees re-pulls the packed hook fee for an existing pool from the fee
// controller. Without a controller the fee resets to zero.
func (m *PoolManager) SetHookFees(key model.PoolKey) (model.PackedFee, error) {
	id := key.ID()
	base, ok := m.registry.Get(id)
	if !ok {
		return 0, m.fail(model.ErrPoolNotInitialized)
	}
	var fee model.PackedFee
	if m.cfg.FeeController != nil {
		pulled, err := m.cfg.FeeController.HookFeesFor(key)
		if err != nil {
			return 0, m.fail(fmt.Errorf("hook fee lookup: %w", err))
		}
		if err := pulled.Validate(); err != nil {
			return 0, m.fail(err)
		}
		fee = pulled
	}
	m.touchPool(id, base)
	work := base.Clone()
	work.HookFee = fee
	m.registry.Put(id, work)
	return fee, nil
}

// CollectProtocolFees transfers a pool's accrued protocol fees to the
// recipient and zeroes the accrual. Only the configured owner may collect,
// and never while a lock session is open: the transfer out of custody cannot
// be rolled back with the session.
func (m *PoolManager) CollectProtocolFees(caller common.Address, id model.PoolId, to common.Address) (model.FeePair, error) {
	if m.locks.Depth() != 0 {
		return model.FeePair{}, &model.LockedByError{Active: m.locks.Active()}
	}
	if caller != m.cfg.Owner {
		return model.FeePair{}, model.ErrInvalidCaller
	}
	return m.collect(m.protocolFees, id, to)
}

// CollectHookFees transfers a pool's accrued hook fees to the recipient and
// zeroes the accrual. Only the pool's hook address may collect, outside any
// lock session.
func (m *PoolManager) CollectHookFees(caller common.Address, id model.PoolId, to common.Address) (model.FeePair, error) {
	if m.locks.Depth() != 0 {
		return model.FeePair{}, &model.LockedByError{Active: m.locks.Active()}
	}
	base, ok := m.registry.Get(id)
	if !ok {
		return model.FeePair{}, model.ErrPoolNotInitialized
	}
	if base.Key.Hooks == (common.Address{}) || caller != base.Key.Hooks {
		return model.FeePair{}, model.ErrInvalidCaller
	}
	return m.collect(m.hookFees, id, to)
}

func (m *PoolManager) collect(table map[model.PoolId]model.FeePair, id model.PoolId, to common.Address) (model.FeePair, error) {
	base, ok := m.registry.Get(id)
	if !ok {
		return model.FeePair{}, model.ErrPoolNotInitialized
	}
	pair, ok := table[id]
	if !ok || pair.IsZero() {
		return model.NewFeePair(), nil
	}
	collected := pair.Clone()
	if collected.Amount0.Sign() > 0 {
		if err := m.vault.TransferOut(base.Key.Currency0, to, collected.Amount0); err != nil {
			return model.FeePair{}, err
		}
	}
	if collected.Amount1.Sign() > 0 {
		if err := m.vault.TransferOut(base.Key.Currency1, to, collected.Amount1); err != nil {
			return model.FeePair{}, err
		}
	}
	delete(table, id)
	return collected, nil
}
