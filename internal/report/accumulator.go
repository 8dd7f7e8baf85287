package report

import (
	"encoding/json"
	"fmt"
	"math/big"

	"flashLedger/internal/model"
)

// Accumulator holds running totals for one pool.
type Accumulator struct {
	PoolID      string
	Initializes uint64
	Modifies    uint64
	SwapCount   uint64
	Volume0     *big.Int
	Volume1     *big.Int
	Fee0        *big.Int
	Fee1        *big.Int
	FirstSeq    uint64
	LastSeq     uint64
}

func NewAccumulator(poolID string) *Accumulator {
	return &Accumulator{
		PoolID:  poolID,
		Volume0: big.NewInt(0),
		Volume1: big.NewInt(0),
		Fee0:    big.NewInt(0),
		Fee1:    big.NewInt(0),
	}
}

func (a *Accumulator) AddRecord(record model.EventRecord) error {
	if a.FirstSeq == 0 || record.Seq < a.FirstSeq {
		a.FirstSeq = record.Seq
	}
	if record.Seq > a.LastSeq {
		a.LastSeq = record.Seq
	}

	switch record.EventName {
	case "Initialize":
		a.Initializes++
		return nil
	case "ModifyPosition":
		a.Modifies++
		return nil
	case "Swap":
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		return a.applySwap(swap)
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	amount0, err := parseBigInt(swap.Amount0)
	if err != nil {
		return err
	}
	amount1, err := parseBigInt(swap.Amount1)
	if err != nil {
		return err
	}
	fee, err := parseBigInt(swap.Fee)
	if err != nil {
		return err
	}

	absAdd(a.Volume0, amount0)
	absAdd(a.Volume1, amount1)

	// The swap fee was charged in the input currency, the side the trader
	// paid into the pool.
	if amount0.Sign() < 0 {
		a.Fee0.Add(a.Fee0, fee)
	} else if amount1.Sign() < 0 {
		a.Fee1.Add(a.Fee1, fee)
	}

	a.SwapCount++
	return nil
}

// Report snapshots the totals.
func (a *Accumulator) Report() model.PoolReport {
	return model.PoolReport{
		PoolID:      a.PoolID,
		Initializes: a.Initializes,
		Modifies:    a.Modifies,
		SwapCount:   a.SwapCount,
		Volume0:     a.Volume0.String(),
		Volume1:     a.Volume1.String(),
		Fee0:        a.Fee0.String(),
		Fee1:        a.Fee1.String(),
		FirstSeq:    a.FirstSeq,
		LastSeq:     a.LastSeq,
	}
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func absAdd(target *big.Int, value *big.Int) {
	if value == nil || target == nil {
		return
	}
	abs := new(big.Int).Abs(value)
	target.Add(target, abs)
}
