// Package ledger holds the transient accounting state of a settlement
// session: the nested lock stack, per-caller currency deltas, and minted
// claim balances.
package ledger

import "github.com/ethereum/go-ethereum/common"

// LockStack is the strictly nested stack of lock holders. The top entry is
// the active locker, the only identity allowed to run restricted operations.
type LockStack struct {
	stack []common.Address
}

func NewLockStack() *LockStack {
	return &LockStack{}
}

// Push enters a nested lock held by locker.
func (s *LockStack) Push(locker common.Address) {
	s.stack = append(s.stack, locker)
}

// Pop leaves the innermost lock. Pushes and pops are balanced by the session
// driver.
func (s *LockStack) Pop() {
	if len(s.stack) == 0 {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
}

// Depth returns the current nesting depth.
func (s *LockStack) Depth() int {
	return len(s.stack)
}

// Active returns the current lock holder, or the zero address when no lock
// is held.
func (s *LockStack) Active() common.Address {
	if len(s.stack) == 0 {
		return common.Address{}
	}
	return s.stack[len(s.stack)-1]
}
