package replay

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestKeySpecPoolKey(t *testing.T) {
	spec := scriptKey()
	key, err := spec.PoolKey()
	if err != nil {
		t.Fatalf("pool key: %v", err)
	}
	if key.Currency0 != usd || key.Currency1 != weth {
		t.Fatalf("currencies = %s/%s", key.Currency0.Hex(), key.Currency1.Hex())
	}
	if key.Fee != 3000 || key.TickSpacing != 60 {
		t.Fatalf("fee/spacing = %d/%d", key.Fee, key.TickSpacing)
	}
	if key.Hooks != (common.Address{}) {
		t.Fatalf("hooks = %s, want zero", key.Hooks.Hex())
	}

	bad := scriptKey()
	bad.Currency0 = "not-an-address"
	if _, err := bad.PoolKey(); err == nil {
		t.Fatalf("invalid currency0 accepted")
	}

	var nilSpec *KeySpec
	if _, err := nilSpec.PoolKey(); err == nil {
		t.Fatalf("nil key accepted")
	}
}

func TestLineForms(t *testing.T) {
	var standalone Line
	raw := `{"op":"transfer_in","currency":"` + usd.Hex() + `","amount":"7"}`
	if err := json.Unmarshal([]byte(raw), &standalone); err != nil {
		t.Fatalf("unmarshal standalone: %v", err)
	}
	if standalone.IsSession() {
		t.Fatalf("standalone line reported as session")
	}
	if standalone.Op != "transfer_in" || standalone.Amount != "7" {
		t.Fatalf("standalone = %+v", standalone.OpSpec)
	}

	var session Line
	raw = `{"locker":"` + alice.Hex() + `","ops":[{"op":"settle","currency":"` + usd.Hex() + `"}]}`
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if !session.IsSession() {
		t.Fatalf("session line not detected")
	}
	if len(session.Ops) != 1 || session.Ops[0].Op != "settle" {
		t.Fatalf("session ops = %+v", session.Ops)
	}
}

func TestParseHelpers(t *testing.T) {
	if _, err := parseAddress(""); err == nil {
		t.Fatalf("empty address accepted")
	}
	if _, err := parseAddress("0x12"); err == nil {
		t.Fatalf("short address accepted")
	}
	addr, err := parseOptionalAddress("")
	if err != nil || addr != (common.Address{}) {
		t.Fatalf("optional empty address = %s, %v", addr.Hex(), err)
	}

	n, err := parseBig("-42")
	if err != nil || n.Int64() != -42 {
		t.Fatalf("parseBig = %v, %v", n, err)
	}
	if _, err := parseBig(""); err == nil {
		t.Fatalf("empty amount accepted")
	}
	if _, err := parseBig("0x10"); err == nil {
		t.Fatalf("hex amount accepted")
	}
	opt, err := parseOptionalBig("")
	if err != nil || opt != nil {
		t.Fatalf("optional empty = %v, %v", opt, err)
	}
}
