package model

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Pool configuration and registry errors.
var (
	ErrFeeTooLarge            = errors.New("fee too large")
	ErrTickSpacingTooLarge    = errors.New("tick spacing too large")
	ErrTickSpacingTooSmall    = errors.New("tick spacing too small")
	ErrCurrenciesOutOfOrder   = errors.New("currencies out of order")
	ErrPoolAlreadyInitialized = errors.New("pool already initialized")
	ErrPoolNotInitialized     = errors.New("pool not initialized")
	ErrInvalidSqrtPrice       = errors.New("invalid sqrt price")
)

// Hook errors.
var (
	ErrHookAddressInvalid  = errors.New("hook address invalid")
	ErrInvalidHookResponse = errors.New("invalid hook response")
)

// Settlement and session errors.
var (
	ErrCurrencyNotSettled    = errors.New("currency not settled")
	ErrMaxCurrenciesTouched  = errors.New("max currencies touched")
	ErrNegativeAmount        = errors.New("negative amount")
	ErrInsufficientBalance   = errors.New("insufficient claim balance")
	ErrBalanceOverflow       = errors.New("claim balance overflow")
	ErrInvalidCaller         = errors.New("invalid caller")
	ErrDynamicFeeUnavailable = errors.New("dynamic fee resolver unavailable")
)

// Swap and position errors.
var (
	ErrPriceLimitOutOfBounds     = errors.New("price limit out of bounds")
	ErrPriceLimitAlreadyExceeded = errors.New("price limit already exceeded")
	ErrInvalidTickRange          = errors.New("invalid tick range")
	ErrLiquidityUnderflow        = errors.New("liquidity underflow")
	ErrLiquidityOverflow         = errors.New("liquidity overflow")
	ErrEmptyPosition             = errors.New("cannot update empty position")
	ErrNoLiquidityToDonate       = errors.New("no liquidity to receive donation")
)

// LockedByError reports that a restricted operation was attempted by a caller
// other than the active locker. Active is the zero address when no lock is
// held at all.
type LockedByError struct {
	Active common.Address
}

func (e *LockedByError) Error() string {
	return fmt.Sprintf("locked by %s", e.Active.Hex())
}
