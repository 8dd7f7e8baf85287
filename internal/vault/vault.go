// Package vault abstracts custody of the real currency balances standing
// behind the ledger's deltas. The ledger never moves funds as a side effect
// of pool mutations; it only instructs the vault on take and observes
// inflows on settle.
package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// Vault is the external custody collaborator.
type Vault interface {
	// TransferOut moves amount of currency from custody to the recipient.
	TransferOut(currency common.Address, to common.Address, amount *big.Int) error
	// ObserveReceived reports the amount of currency received since the
	// previous observation and advances the observation marker.
	ObserveReceived(currency common.Address) (*big.Int, error)
}

// MemoryVault is an in-memory Vault for tests and replay runs. Credit
// simulates an inbound transfer from the outside world.
type MemoryVault struct {
	balances map[common.Address]*big.Int
	observed map[common.Address]*big.Int
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{
		balances: make(map[common.Address]*big.Int),
		observed: make(map[common.Address]*big.Int),
	}
}

func (v *MemoryVault) balance(currency common.Address) *big.Int {
	b, ok := v.balances[currency]
	if !ok {
		b = big.NewInt(0)
		v.balances[currency] = b
	}
	return b
}

func (v *MemoryVault) marker(currency common.Address) *big.Int {
	m, ok := v.observed[currency]
	if !ok {
		m = big.NewInt(0)
		v.observed[currency] = m
	}
	return m
}

// Credit records an inbound transfer of amount into custody.
func (v *MemoryVault) Credit(currency common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrNegativeAmount
	}
	b := v.balance(currency)
	b.Add(b, amount)
	return nil
}

// Balance returns the current custody balance of a currency.
func (v *MemoryVault) Balance(currency common.Address) *big.Int {
	return new(big.Int).Set(v.balance(currency))
}

// TransferOut debits custody. The observation marker moves in lockstep so
// an outflow never shows up as a negative receipt on the next settle.
func (v *MemoryVault) TransferOut(currency common.Address, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return model.ErrNegativeAmount
	}
	b := v.balance(currency)
	if b.Cmp(amount) < 0 {
		return fmt.Errorf("transfer %s of %s to %s: %w", amount, currency.Hex(), to.Hex(), model.ErrInsufficientBalance)
	}
	b.Sub(b, amount)
	m := v.marker(currency)
	m.Sub(m, amount)
	return nil
}

// ObserveReceived returns the inflow since the previous observation.
func (v *MemoryVault) ObserveReceived(currency common.Address) (*big.Int, error) {
	b := v.balance(currency)
	m := v.marker(currency)
	received := new(big.Int).Sub(b, m)
	m.Set(b)
	return received, nil
}
