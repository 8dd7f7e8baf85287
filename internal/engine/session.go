package engine

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"flashLedger/internal/model"
	"flashLedger/internal/pool"
)

// LockCallback runs while the lock is held and may re-enter the manager.
type LockCallback func(data []byte) ([]byte, error)

type ownerCurrency struct {
	owner    common.Address
	currency common.Address
}

// session carries the copy-on-write snapshots and buffered events of one
// outermost lock. Snapshots are taken at first mutation; rollback restores
// them and commit flushes the events.
type session struct {
	basePools        map[model.PoolId]*pool.Pool
	created          map[model.PoolId]struct{}
	baseClaims       map[ownerCurrency]*uint256.Int
	baseProtocolFees map[model.PoolId]*model.FeePair
	baseHookFees     map[model.PoolId]*model.FeePair
	events           []model.Event
	failure          error
}

func (m *PoolManager) beginSession() {
	m.session = &session{
		basePools:        make(map[model.PoolId]*pool.Pool),
		created:          make(map[model.PoolId]struct{}),
		baseClaims:       make(map[ownerCurrency]*uint256.Int),
		baseProtocolFees: make(map[model.PoolId]*model.FeePair),
		baseHookFees:     make(map[model.PoolId]*model.FeePair),
	}
	m.deltas.Reset()
}

// touchPool records the committed pool object once per session so rollback
// can put it back.
func (m *PoolManager) touchPool(id model.PoolId, base *pool.Pool) {
	if m.session == nil {
		return
	}
	if _, created := m.session.created[id]; created {
		return
	}
	if _, seen := m.session.basePools[id]; seen {
		return
	}
	m.session.basePools[id] = base
}

func (m *PoolManager) touchClaim(owner, currency common.Address) {
	if m.session == nil {
		return
	}
	key := ownerCurrency{owner: owner, currency: currency}
	if _, seen := m.session.baseClaims[key]; seen {
		return
	}
	m.session.baseClaims[key] = m.claims.Balance(owner, currency)
}

func (m *PoolManager) touchProtocolFees(id model.PoolId) {
	if m.session == nil {
		return
	}
	if _, seen := m.session.baseProtocolFees[id]; seen {
		return
	}
	if pair, ok := m.protocolFees[id]; ok {
		clone := pair.Clone()
		m.session.baseProtocolFees[id] = &clone
	} else {
		m.session.baseProtocolFees[id] = nil
	}
}

func (m *PoolManager) touchHookFees(id model.PoolId) {
	if m.session == nil {
		return
	}
	if _, seen := m.session.baseHookFees[id]; seen {
		return
	}
	if pair, ok := m.hookFees[id]; ok {
		clone := pair.Clone()
		m.session.baseHookFees[id] = &clone
	} else {
		m.session.baseHookFees[id] = nil
	}
}

func (m *PoolManager) rollbackSession() {
	s := m.session
	for id, base := range s.basePools {
		m.registry.Put(id, base)
	}
	for id := range s.created {
		m.registry.Delete(id)
	}
	for key, balance := range s.baseClaims {
		m.claims.SetBalance(key.owner, key.currency, balance)
	}
	for id, pair := range s.baseProtocolFees {
		if pair == nil {
			delete(m.protocolFees, id)
		} else {
			m.protocolFees[id] = *pair
		}
	}
	for id, pair := range s.baseHookFees {
		if pair == nil {
			delete(m.hookFees, id)
		} else {
			m.hookFees[id] = *pair
		}
	}
}

func (m *PoolManager) commitSession() {
	if len(m.session.events) == 0 {
		return
	}
	if err := m.sink.PutEventBatch(m.session.events); err != nil {
		// Ledger state is already committed; a sink outage must not undo it.
		m.logger.Warn("event sink write failed",
			zap.Error(err),
			zap.Int("events", len(m.session.events)))
	}
}

// Lock opens a session for locker (or nests into the current one), runs fn
// while the lock is held, and performs release bookkeeping. The outermost
// release requires every currency delta to be settled, commits buffered
// events on success, and rolls everything back on failure. A failure at any
// depth poisons the session: the outermost release reports the first
// failure even when intermediate callbacks swallowed it.
func (m *PoolManager) Lock(locker common.Address, data []byte, fn LockCallback) ([]byte, error) {
	outer := m.locks.Depth() == 0
	if outer {
		m.beginSession()
	}
	m.locks.Push(locker)

	var result []byte
	var err error
	if fn != nil {
		result, err = fn(data)
		if err != nil {
			m.failSession(err)
		}
	}

	m.locks.Pop()
	if !outer {
		return result, err
	}

	if m.session.failure == nil && m.deltas.NonzeroCount() != 0 {
		m.failSession(model.ErrCurrencyNotSettled)
	}
	failure := m.session.failure
	if failure != nil {
		m.rollbackSession()
		m.session = nil
		return nil, failure
	}

	m.commitSession()
	m.session = nil
	return result, nil
}
