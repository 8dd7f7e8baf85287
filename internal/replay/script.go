package replay

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/model"
)

// KeySpec names a pool in a script line. Addresses are 0x-prefixed hex.
type KeySpec struct {
	Currency0   string `json:"currency0"`
	Currency1   string `json:"currency1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
	Hooks       string `json:"hooks,omitempty"`
}

// PoolKey builds the model key from the script fields.
func (k *KeySpec) PoolKey() (model.PoolKey, error) {
	if k == nil {
		return model.PoolKey{}, fmt.Errorf("key is required")
	}
	currency0, err := parseAddress(k.Currency0)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("currency0: %w", err)
	}
	currency1, err := parseAddress(k.Currency1)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("currency1: %w", err)
	}
	hooks, err := parseOptionalAddress(k.Hooks)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("hooks: %w", err)
	}
	return model.PoolKey{
		Currency0:   currency0,
		Currency1:   currency1,
		Fee:         k.Fee,
		TickSpacing: k.TickSpacing,
		Hooks:       hooks,
	}, nil
}

// OpSpec is one ledger instruction. Which fields apply depends on Op:
//
//	initialize            key, sqrt_price_x96
//	transfer_in           currency, amount
//	swap                  key, zero_for_one, amount_specified, sqrt_price_limit_x96
//	modify_position       key, tick_lower, tick_upper, liquidity_delta
//	donate                key, amount0, amount1
//	take                  currency, to, amount
//	settle                currency
//	mint                  currency, to, amount
//	burn                  currency, amount
//	set_protocol_fees     key
//	set_hook_fees         key
//	collect_protocol_fees key, to
//	collect_hook_fees     key, to
//
// Big integers travel as decimal strings.
type OpSpec struct {
	Op              string   `json:"op"`
	Sender          string   `json:"sender,omitempty"`
	Key             *KeySpec `json:"key,omitempty"`
	SqrtPriceX96    string   `json:"sqrt_price_x96,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	To              string   `json:"to,omitempty"`
	Amount          string   `json:"amount,omitempty"`
	ZeroForOne      bool     `json:"zero_for_one,omitempty"`
	AmountSpecified string   `json:"amount_specified,omitempty"`
	PriceLimitX96   string   `json:"sqrt_price_limit_x96,omitempty"`
	TickLower       int      `json:"tick_lower,omitempty"`
	TickUpper       int      `json:"tick_upper,omitempty"`
	LiquidityDelta  string   `json:"liquidity_delta,omitempty"`
	Amount0         string   `json:"amount0,omitempty"`
	Amount1         string   `json:"amount1,omitempty"`
}

// Line is one script line: either a standalone instruction, or a lock
// session applying every listed op under one locker.
type Line struct {
	OpSpec
	Locker string   `json:"locker,omitempty"`
	Ops    []OpSpec `json:"ops,omitempty"`
}

// IsSession reports whether the line opens a lock session.
func (l *Line) IsSession() bool {
	return l.Locker != ""
}

func parseAddress(value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid address %q", value)
	}
	return common.HexToAddress(value), nil
}

func parseOptionalAddress(value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, nil
	}
	return parseAddress(value)
}

func parseBig(value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("amount is required")
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int %q", value)
	}
	return parsed, nil
}

func parseOptionalBig(value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	return parseBig(value)
}
