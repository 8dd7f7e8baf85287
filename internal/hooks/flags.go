package hooks

import "github.com/ethereum/go-ethereum/common"

// Capability bits live in the leading byte of a hook address, most
// significant bit first.
const (
	flagBeforeInitialize     byte = 1 << 7
	flagAfterInitialize      byte = 1 << 6
	flagBeforeModifyPosition byte = 1 << 5
	flagAfterModifyPosition  byte = 1 << 4
	flagBeforeSwap           byte = 1 << 3
	flagAfterSwap            byte = 1 << 2
	flagBeforeDonate         byte = 1 << 1
	flagAfterDonate          byte = 1 << 0
)

// Flags declares which lifecycle points a hook implements.
type Flags struct {
	BeforeInitialize     bool
	AfterInitialize      bool
	BeforeModifyPosition bool
	AfterModifyPosition  bool
	BeforeSwap           bool
	AfterSwap            bool
	BeforeDonate         bool
	AfterDonate          bool
}

// FlagsFromAddress decodes the capability bits carried by a hook address.
func FlagsFromAddress(addr common.Address) Flags {
	b := addr[0]
	return Flags{
		BeforeInitialize:     b&flagBeforeInitialize != 0,
		AfterInitialize:      b&flagAfterInitialize != 0,
		BeforeModifyPosition: b&flagBeforeModifyPosition != 0,
		AfterModifyPosition:  b&flagAfterModifyPosition != 0,
		BeforeSwap:           b&flagBeforeSwap != 0,
		AfterSwap:            b&flagAfterSwap != 0,
		BeforeDonate:         b&flagBeforeDonate != 0,
		AfterDonate:          b&flagAfterDonate != 0,
	}
}

// Any reports whether at least one point is declared.
func (f Flags) Any() bool {
	return f.leadingByte() != 0
}

func (f Flags) leadingByte() byte {
	var b byte
	if f.BeforeInitialize {
		b |= flagBeforeInitialize
	}
	if f.AfterInitialize {
		b |= flagAfterInitialize
	}
	if f.BeforeModifyPosition {
		b |= flagBeforeModifyPosition
	}
	if f.AfterModifyPosition {
		b |= flagAfterModifyPosition
	}
	if f.BeforeSwap {
		b |= flagBeforeSwap
	}
	if f.AfterSwap {
		b |= flagAfterSwap
	}
	if f.BeforeDonate {
		b |= flagBeforeDonate
	}
	if f.AfterDonate {
		b |= flagAfterDonate
	}
	return b
}

// AddressWithFlags builds a hook address whose leading byte encodes the given
// flags, with salt distinguishing addresses that share a flag set.
func AddressWithFlags(f Flags, salt byte) common.Address {
	var addr common.Address
	addr[0] = f.leadingByte()
	addr[19] = salt
	return addr
}
