package model

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// FeeDenominator is the unit of swap fee rates: a fee of 3000 is 0.30%.
	FeeDenominator uint32 = 1_000_000

	// MaxSwapFee is the largest admissible swap fee rate, 100%.
	MaxSwapFee uint32 = FeeDenominator

	// DynamicFeeFlag marks a pool whose swap fee is resolved per swap rather
	// than fixed at initialization. It occupies the top bit of the 24-bit fee
	// space; the static bits below it are ignored for dynamic pools.
	DynamicFeeFlag uint32 = 1 << 23

	// MinTickSpacing and MaxTickSpacing bound the tick spacing of a pool.
	MinTickSpacing int32 = 1
	MaxTickSpacing int32 = 32767
)

// PoolKey identifies a pool by its full configuration. Two keys differing in
// any field address two distinct pools.
type PoolKey struct {
	Currency0   common.Address `json:"currency0"`
	Currency1   common.Address `json:"currency1"`
	Fee         uint32         `json:"fee"`
	TickSpacing int32          `json:"tick_spacing"`
	Hooks       common.Address `json:"hooks"`
}

// PoolId is the canonical identity of a pool, derived from its key.
type PoolId common.Hash

// ID derives the pool identity as the Keccak-256 digest of the key's five
// fields, each encoded as a left-padded 32-byte big-endian word in declaration
// order.
func (k PoolKey) ID() PoolId {
	var buf [160]byte
	copy(buf[12:32], k.Currency0[:])
	copy(buf[44:64], k.Currency1[:])
	binary.BigEndian.PutUint32(buf[92:96], k.Fee)
	binary.BigEndian.PutUint32(buf[124:128], uint32(k.TickSpacing))
	copy(buf[140:160], k.Hooks[:])
	return PoolId(crypto.Keccak256Hash(buf[:]))
}

// IsDynamicFee reports whether the key requests per-swap fee resolution.
func (k PoolKey) IsDynamicFee() bool {
	return k.Fee&DynamicFeeFlag != 0
}

// StaticFee returns the fee rate with the dynamic flag masked off.
func (k PoolKey) StaticFee() uint32 {
	return k.Fee &^ DynamicFeeFlag
}

// Validate checks the structural constraints on a key: the static fee rate
// must not exceed MaxSwapFee, tick spacing must lie within bounds, and the
// currencies must be distinct and in ascending byte order.
func (k PoolKey) Validate() error {
	if !k.IsDynamicFee() && k.Fee > MaxSwapFee {
		return ErrFeeTooLarge
	}
	if k.TickSpacing > MaxTickSpacing {
		return ErrTickSpacingTooLarge
	}
	if k.TickSpacing < MinTickSpacing {
		return ErrTickSpacingTooSmall
	}
	if bytes.Compare(k.Currency0[:], k.Currency1[:]) >= 0 {
		return ErrCurrenciesOutOfOrder
	}
	return nil
}

// Hex returns the 0x-prefixed hex encoding of the id.
func (id PoolId) Hex() string {
	return common.Hash(id).Hex()
}

func (id PoolId) String() string {
	return id.Hex()
}
