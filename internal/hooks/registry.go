package hooks

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// ErrAlreadyRegistered reports a duplicate hook registration.
var ErrAlreadyRegistered = errors.New("hook already registered")

// Registration binds a hook address to its implementation and declared flags.
type Registration struct {
	Address common.Address
	Hook    Hook
	Flags   Flags
}

// ValidateAddress checks that an address is usable as a hook: non-zero, with
// at least one capability bit, and with decoded bits matching the declared
// flags exactly.
func ValidateAddress(addr common.Address, declared Flags) error {
	if addr == (common.Address{}) {
		return fmt.Errorf("zero address: %w", model.ErrHookAddressInvalid)
	}
	if !declared.Any() {
		return fmt.Errorf("no capability bits: %w", model.ErrHookAddressInvalid)
	}
	if FlagsFromAddress(addr) != declared {
		return fmt.Errorf("declared flags do not match address bits: %w", model.ErrHookAddressInvalid)
	}
	return nil
}

// Registry holds the known hook implementations by address.
type Registry struct {
	hooks map[common.Address]Registration
}

func NewRegistry() *Registry {
	return &Registry{hooks: make(map[common.Address]Registration)}
}

// Register validates the address against the declared flags and stores the
// implementation.
func (r *Registry) Register(addr common.Address, impl Hook, declared Flags) error {
	if impl == nil {
		return fmt.Errorf("nil implementation: %w", model.ErrHookAddressInvalid)
	}
	if err := ValidateAddress(addr, declared); err != nil {
		return err
	}
	if _, exists := r.hooks[addr]; exists {
		return fmt.Errorf("%s: %w", addr.Hex(), ErrAlreadyRegistered)
	}
	r.hooks[addr] = Registration{Address: addr, Hook: impl, Flags: declared}
	return nil
}

// Lookup returns the registration for an address.
func (r *Registry) Lookup(addr common.Address) (Registration, bool) {
	reg, ok := r.hooks[addr]
	return reg, ok
}

// ValidateFor re-checks a hook address at pool initialization. The zero
// address means the pool runs without hooks and always passes.
func (r *Registry) ValidateFor(addr common.Address) error {
	if addr == (common.Address{}) {
		return nil
	}
	reg, ok := r.hooks[addr]
	if !ok {
		return fmt.Errorf("unregistered hook %s: %w", addr.Hex(), model.ErrHookAddressInvalid)
	}
	return ValidateAddress(addr, reg.Flags)
}
