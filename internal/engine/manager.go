// Package engine hosts the pool manager: the singleton facade that wires the
// pool registry, hook dispatch, fee resolution, the session ledgers, and the
// custody vault into the lock/settle transaction machine.
package engine

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flashLedger/internal/fees"
	"flashLedger/internal/hooks"
	"flashLedger/internal/ledger"
	"flashLedger/internal/model"
	"flashLedger/internal/pool"
	"flashLedger/internal/storage"
	"flashLedger/internal/vault"
)

// DefaultMaxCurrenciesTouched bounds the distinct (caller, currency) pairs a
// session may accumulate deltas for.
const DefaultMaxCurrenciesTouched = 256

// Config carries the manager's collaborators and tunables.
type Config struct {
	// Owner may collect accrued protocol fees.
	Owner common.Address
	// MaxCurrenciesTouched caps delta pairs per session; 0 means the default.
	MaxCurrenciesTouched int
	// FeeResolver answers swap fee rates for dynamic-fee pools.
	FeeResolver fees.Resolver
	// FeeController supplies packed protocol and hook fees per pool.
	FeeController fees.Controller
}

// PoolManager owns all pools and runs every operation against them.
// Transactions are serialized by the surrounding environment; the lock stack
// is a reentrancy discipline, not a thread lock, and the manager carries no
// mutex of its own.
type PoolManager struct {
	cfg      Config
	registry *pool.Registry
	hooks    *hooks.Registry
	dispatch *hooks.Dispatcher
	locks    *ledger.LockStack
	deltas   *ledger.DeltaLedger
	claims   *ledger.ClaimLedger
	vault    vault.Vault
	sink     storage.EventSink
	logger   *zap.Logger

	protocolFees map[model.PoolId]model.FeePair
	hookFees     map[model.PoolId]model.FeePair

	seq     uint64
	session *session
}

// New builds a manager. A nil vault gets an in-memory one, a nil sink
// discards events, and a nil logger is replaced with a no-op logger.
func New(cfg Config, v vault.Vault, sink storage.EventSink, logger *zap.Logger) *PoolManager {
	if cfg.MaxCurrenciesTouched <= 0 {
		cfg.MaxCurrenciesTouched = DefaultMaxCurrenciesTouched
	}
	if v == nil {
		v = vault.NewMemoryVault()
	}
	if sink == nil {
		sink = storage.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	hookRegistry := hooks.NewRegistry()
	return &PoolManager{
		cfg:          cfg,
		registry:     pool.NewRegistry(),
		hooks:        hookRegistry,
		dispatch:     hooks.NewDispatcher(hookRegistry),
		locks:        ledger.NewLockStack(),
		deltas:       ledger.NewDeltaLedger(cfg.MaxCurrenciesTouched),
		claims:       ledger.NewClaimLedger(),
		vault:        v,
		sink:         sink,
		logger:       logger,
		protocolFees: make(map[model.PoolId]model.FeePair),
		hookFees:     make(map[model.PoolId]model.FeePair),
	}
}

// Hooks exposes the hook registry for registering implementations.
func (m *PoolManager) Hooks() *hooks.Registry {
	return m.hooks
}

// requireActive gates restricted operations on the lock stack top and on the
// session not being poisoned.
func (m *PoolManager) requireActive(caller common.Address) error {
	if m.locks.Depth() == 0 || m.locks.Active() != caller {
		return &model.LockedByError{Active: m.locks.Active()}
	}
	if m.session.failure != nil {
		return m.session.failure
	}
	return nil
}

// fail records err as the session failure and hands it back.
func (m *PoolManager) fail(err error) error {
	m.failSession(err)
	return err
}

func (m *PoolManager) failSession(err error) {
	if m.session == nil || m.session.failure != nil {
		return
	}
	m.session.failure = err
	m.logger.Warn("session failed",
		zap.Error(err),
		zap.Int("depth", m.locks.Depth()),
		zap.String("locker", m.locks.Active().Hex()))
}

// emit buffers an event in the session, or writes it straight to the sink
// when no session is open. Sequence numbers are global and not reissued on
// rollback, so the committed stream may contain gaps.
func (m *PoolManager) emit(name string, id model.PoolId, decoded interface{}) {
	m.seq++
	event := model.Event{
		Seq:       m.seq,
		EventName: name,
		PoolID:    id.Hex(),
		EmittedAt: time.Now().UTC().Format(time.RFC3339),
		Decoded:   decoded,
	}
	if m.session != nil {
		m.session.events = append(m.session.events, event)
		return
	}
	if err := m.sink.PutEventBatch([]model.Event{event}); err != nil {
		m.logger.Warn("event sink write failed", zap.Error(err), zap.String("event", name))
	}
}
