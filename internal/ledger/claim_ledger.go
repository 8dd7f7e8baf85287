package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"flashLedger/internal/model"
)

type claimKey struct {
	owner    common.Address
	currency common.Address
}

// ClaimLedger stores minted claim balances: unsigned per-owner per-currency
// amounts redeemable against the ledger's reserves. Balances persist across
// sessions.
type ClaimLedger struct {
	balances map[claimKey]*uint256.Int
}

func NewClaimLedger() *ClaimLedger {
	return &ClaimLedger{balances: make(map[claimKey]*uint256.Int)}
}

// Balance returns a copy of the owner's claim balance in currency.
func (l *ClaimLedger) Balance(owner, currency common.Address) *uint256.Int {
	if balance, ok := l.balances[claimKey{owner: owner, currency: currency}]; ok {
		return balance.Clone()
	}
	return uint256.NewInt(0)
}

// Mint credits a claim balance with checked overflow.
func (l *ClaimLedger) Mint(owner, currency common.Address, amount *uint256.Int) error {
	key := claimKey{owner: owner, currency: currency}
	current, ok := l.balances[key]
	if !ok {
		current = uint256.NewInt(0)
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return model.ErrBalanceOverflow
	}
	l.balances[key] = next
	return nil
}

// Burn debits a claim balance, rejecting burns beyond the held amount.
func (l *ClaimLedger) Burn(owner, currency common.Address, amount *uint256.Int) error {
	key := claimKey{owner: owner, currency: currency}
	current, ok := l.balances[key]
	if !ok || current.Lt(amount) {
		return model.ErrInsufficientBalance
	}
	next := new(uint256.Int).Sub(current, amount)
	if next.IsZero() {
		delete(l.balances, key)
		return nil
	}
	l.balances[key] = next
	return nil
}

// SetBalance replaces a balance outright, removing it when nil or zero. Used
// to restore snapshots on session rollback.
func (l *ClaimLedger) SetBalance(owner, currency common.Address, balance *uint256.Int) {
	key := claimKey{owner: owner, currency: currency}
	if balance == nil || balance.IsZero() {
		delete(l.balances, key)
		return
	}
	l.balances[key] = balance.Clone()
}
