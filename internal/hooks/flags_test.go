package hooks

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

func allFlagVariants() []Flags {
	variants := make([]Flags, 0, 8)
	for bit := 0; bit < 8; bit++ {
		var f Flags
		switch bit {
		case 0:
			f.BeforeInitialize = true
		case 1:
			f.AfterInitialize = true
		case 2:
			f.BeforeModifyPosition = true
		case 3:
			f.AfterModifyPosition = true
		case 4:
			f.BeforeSwap = true
		case 5:
			f.AfterSwap = true
		case 6:
			f.BeforeDonate = true
		case 7:
			f.AfterDonate = true
		}
		variants = append(variants, f)
	}
	return variants
}

func TestFlagsRoundTripEveryBit(t *testing.T) {
	for i, f := range allFlagVariants() {
		addr := AddressWithFlags(f, byte(i+1))
		if got := FlagsFromAddress(addr); got != f {
			t.Fatalf("bit %d: decoded %+v, want %+v", i, got, f)
		}
		if err := ValidateAddress(addr, f); err != nil {
			t.Fatalf("bit %d: matching flags rejected: %v", i, err)
		}
	}
}

func TestValidateAddressRejectsMismatch(t *testing.T) {
	variants := allFlagVariants()
	for i, declared := range variants {
		// Address encodes a different single bit than what is declared.
		other := variants[(i+1)%len(variants)]
		addr := AddressWithFlags(other, 1)
		if err := ValidateAddress(addr, declared); !errors.Is(err, model.ErrHookAddressInvalid) {
			t.Fatalf("bit %d: mismatch accepted, err=%v", i, err)
		}
	}
}

func TestValidateAddressRejectsDegenerate(t *testing.T) {
	if err := ValidateAddress(common.Address{}, Flags{BeforeSwap: true}); !errors.Is(err, model.ErrHookAddressInvalid) {
		t.Fatalf("zero address accepted: %v", err)
	}
	addr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	if err := ValidateAddress(addr, Flags{}); !errors.Is(err, model.ErrHookAddressInvalid) {
		t.Fatalf("empty flag set accepted: %v", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()
	f := Flags{BeforeSwap: true, AfterSwap: true}
	addr := AddressWithFlags(f, 7)

	if err := reg.Register(addr, Base{}, f); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := reg.Register(addr, Base{}, f); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate register: got %v", err)
	}
	if err := reg.Register(addr, Base{}, Flags{BeforeDonate: true}); !errors.Is(err, model.ErrHookAddressInvalid) {
		t.Fatalf("mismatched flags register: got %v", err)
	}
	if err := reg.ValidateFor(addr); err != nil {
		t.Fatalf("validate registered hook: %v", err)
	}
	if err := reg.ValidateFor(common.Address{}); err != nil {
		t.Fatalf("zero hook address must validate: %v", err)
	}
	unknown := AddressWithFlags(Flags{BeforeDonate: true}, 9)
	if err := reg.ValidateFor(unknown); !errors.Is(err, model.ErrHookAddressInvalid) {
		t.Fatalf("unregistered hook accepted: %v", err)
	}
}
