package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

type deltaKey struct {
	caller   common.Address
	currency common.Address
}

// DeltaLedger tracks the signed per-caller per-currency deltas of one
// settlement session. Negative means the caller owes the ledger, positive
// means the ledger owes the caller. The session settles only when every
// entry is zero.
type DeltaLedger struct {
	limit   int
	entries map[deltaKey]*big.Int
	nonzero int
}

// NewDeltaLedger bounds the number of distinct (caller, currency) pairs a
// session may touch; a non-positive limit disables the bound.
func NewDeltaLedger(limit int) *DeltaLedger {
	return &DeltaLedger{
		limit:   limit,
		entries: make(map[deltaKey]*big.Int),
	}
}

// Account adds amount to the caller's delta in currency. Accounting zero is
// a no-op; first touches of new pairs are subject to the session bound.
func (l *DeltaLedger) Account(caller, currency common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	key := deltaKey{caller: caller, currency: currency}
	current, ok := l.entries[key]
	if !ok {
		if l.limit > 0 && len(l.entries) >= l.limit {
			return model.ErrMaxCurrenciesTouched
		}
		current = big.NewInt(0)
	}

	next := new(big.Int).Add(current, amount)
	if current.Sign() == 0 && next.Sign() != 0 {
		l.nonzero++
	} else if current.Sign() != 0 && next.Sign() == 0 {
		l.nonzero--
	}
	l.entries[key] = next
	return nil
}

// Delta returns a copy of the caller's delta in currency, zero when the pair
// was never touched.
func (l *DeltaLedger) Delta(caller, currency common.Address) *big.Int {
	if current, ok := l.entries[deltaKey{caller: caller, currency: currency}]; ok {
		return new(big.Int).Set(current)
	}
	return big.NewInt(0)
}

// NonzeroCount returns the number of entries that are currently non-zero.
func (l *DeltaLedger) NonzeroCount() int {
	return l.nonzero
}

// TouchedCount returns the number of distinct pairs touched this session,
// including entries that returned to zero.
func (l *DeltaLedger) TouchedCount() int {
	return len(l.entries)
}

// Reset clears all session state.
func (l *DeltaLedger) Reset() {
	l.entries = make(map[deltaKey]*big.Int)
	l.nonzero = 0
}
