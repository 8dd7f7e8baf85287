package fees

import (
	"errors"
	"math/big"
	"testing"

	"flashLedger/internal/model"
)

type staticResolver struct {
	fee uint32
	err error
}

func (r staticResolver) ResolveFee(model.PoolKey) (uint32, error) {
	return r.fee, r.err
}

func TestSwapFeeStatic(t *testing.T) {
	key := model.PoolKey{Fee: 3000}
	fee, err := SwapFee(key, nil)
	if err != nil {
		t.Fatalf("static fee: %v", err)
	}
	if fee != 3000 {
		t.Fatalf("static fee: got %d, want 3000", fee)
	}
}

func TestSwapFeeDynamic(t *testing.T) {
	key := model.PoolKey{Fee: model.DynamicFeeFlag}

	if _, err := SwapFee(key, nil); !errors.Is(err, model.ErrDynamicFeeUnavailable) {
		t.Fatalf("missing resolver: got %v", err)
	}

	fee, err := SwapFee(key, staticResolver{fee: 450})
	if err != nil {
		t.Fatalf("dynamic fee: %v", err)
	}
	if fee != 450 {
		t.Fatalf("dynamic fee: got %d, want 450", fee)
	}

	if _, err := SwapFee(key, staticResolver{fee: model.MaxSwapFee + 1}); !errors.Is(err, model.ErrFeeTooLarge) {
		t.Fatalf("oversized dynamic fee: got %v", err)
	}

	boom := errors.New("boom")
	if _, err := SwapFee(key, staticResolver{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("resolver error lost: %v", err)
	}
}

func TestSplitApply(t *testing.T) {
	split := Split{Protocol: 4, Hook: 5}
	protocol, hook, remainder := split.Apply(big.NewInt(1000))

	if protocol.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("protocol cut: got %v, want 250", protocol)
	}
	// Hook takes 1/5 of the 750 left after the protocol cut.
	if hook.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("hook cut: got %v, want 150", hook)
	}
	if remainder.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("remainder: got %v, want 600", remainder)
	}
}

func TestSplitApplyDisabled(t *testing.T) {
	protocol, hook, remainder := Split{}.Apply(big.NewInt(999))
	if protocol.Sign() != 0 || hook.Sign() != 0 {
		t.Fatalf("disabled split produced cuts: %v/%v", protocol, hook)
	}
	if remainder.Cmp(big.NewInt(999)) != 0 {
		t.Fatalf("remainder: got %v, want 999", remainder)
	}
}

func TestSplitFromPackedFees(t *testing.T) {
	protocol := model.PackedFee(0x0406)
	hook := model.PackedFee(0x0A00)

	swap := SwapSplit(protocol, hook)
	if swap.Protocol != 4 || swap.Hook != 10 {
		t.Fatalf("swap split: got %+v", swap)
	}
	withdraw := WithdrawSplit(protocol, hook)
	if withdraw.Protocol != 6 || withdraw.Hook != 0 {
		t.Fatalf("withdraw split: got %+v", withdraw)
	}
}
