package replay

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"flashLedger/internal/engine"
	"flashLedger/internal/fees"
	"flashLedger/internal/model"
	"flashLedger/internal/pool"
	"flashLedger/internal/storage"
	"flashLedger/internal/vault"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	usd   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	weth  = common.HexToAddress("0x2000000000000000000000000000000000000002")

	q96 = new(big.Int).Lsh(big.NewInt(1), 96)
)

func scriptKey() KeySpec {
	return KeySpec{
		Currency0:   usd.Hex(),
		Currency1:   weth.Hex(),
		Fee:         3000,
		TickSpacing: 60,
	}
}

// expectedAmounts runs the same operations against a standalone pool to learn
// the exact settlement amounts the script must use.
func expectedAmounts(t *testing.T, liq, swapIn *big.Int) (deposit0, deposit1, swapOut *big.Int) {
	t.Helper()
	spec := scriptKey()
	key, err := spec.PoolKey()
	if err != nil {
		t.Fatalf("pool key: %v", err)
	}
	p := pool.New(key)
	if _, err := p.Initialize(q96); err != nil {
		t.Fatalf("initialize replica: %v", err)
	}
	res, err := p.ModifyPosition(alice, model.ModifyPositionParams{
		TickLower: -600, TickUpper: 600, LiquidityDelta: liq,
	}, fees.Split{})
	if err != nil {
		t.Fatalf("modify replica: %v", err)
	}
	deposit0 = new(big.Int).Neg(res.Delta.Amount0)
	deposit1 = new(big.Int).Neg(res.Delta.Amount1)

	swapRes, err := p.Swap(model.SwapParams{
		ZeroForOne: true, AmountSpecified: swapIn,
	}, 3000, fees.Split{})
	if err != nil {
		t.Fatalf("swap replica: %v", err)
	}
	swapOut = new(big.Int).Set(swapRes.Delta.Amount1)
	return deposit0, deposit1, swapOut
}

func marshalLine(t *testing.T, line Line) string {
	t.Helper()
	data, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("marshal line: %v", err)
	}
	return string(data)
}

func writeScript(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func TestRunnerAppliesScript(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.jsonl")
	eventsPath := filepath.Join(dir, "events.jsonl")
	errorsPath := filepath.Join(dir, "errors.jsonl")
	checkpointPath := filepath.Join(dir, "checkpoint.json")

	liq := big.NewInt(1_000_000_000_000_000_000)
	swapIn := big.NewInt(1_000_000)
	deposit0, deposit1, swapOut := expectedAmounts(t, liq, swapIn)

	spec := scriptKey()
	writeScript(t, scriptPath, []string{
		marshalLine(t, Line{OpSpec: OpSpec{
			Op: "initialize", Sender: alice.Hex(), Key: &spec, SqrtPriceX96: q96.String(),
		}}),
		"",
		marshalLine(t, Line{Locker: alice.Hex(), Ops: []OpSpec{
			{Op: "modify_position", Key: &spec, TickLower: -600, TickUpper: 600, LiquidityDelta: liq.String()},
			{Op: "transfer_in", Currency: usd.Hex(), Amount: deposit0.String()},
			{Op: "settle", Currency: usd.Hex()},
			{Op: "transfer_in", Currency: weth.Hex(), Amount: deposit1.String()},
			{Op: "settle", Currency: weth.Hex()},
		}}),
		marshalLine(t, Line{Locker: bob.Hex(), Ops: []OpSpec{
			{Op: "swap", Key: &spec, ZeroForOne: true, AmountSpecified: swapIn.String()},
			{Op: "transfer_in", Currency: usd.Hex(), Amount: swapIn.String()},
			{Op: "settle", Currency: usd.Hex()},
			{Op: "take", Currency: weth.Hex(), To: bob.Hex(), Amount: swapOut.String()},
		}}),
		marshalLine(t, Line{Locker: bob.Hex(), Ops: []OpSpec{
			{Op: "take", Currency: weth.Hex(), Amount: "10"},
		}}),
		`{"op":"frobnicate"}`,
		`{broken`,
	})

	v := vault.NewMemoryVault()
	m := engine.New(engine.Config{}, v, storage.NewJsonlStorage(eventsPath), nil)
	runner := NewRunner(Config{
		ScriptPath:        scriptPath,
		ErrorsPath:        errorsPath,
		CheckpointPath:    checkpointPath,
		CheckpointEnabled: true,
	}, m, v, nil, nil)

	sum, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 6 || sum.Applied != 3 || sum.Failed != 3 {
		t.Fatalf("summary = %+v, want total 6 applied 3 failed 3", sum)
	}

	ids := m.PoolIDs()
	if len(ids) != 1 {
		t.Fatalf("pools = %d, want 1", len(ids))
	}
	view, err := m.StateView(ids[0])
	if err != nil {
		t.Fatalf("state view: %v", err)
	}
	if view.Liquidity.Cmp(liq) != 0 {
		t.Fatalf("liquidity = %s, want %s", view.Liquidity, liq)
	}

	wantUSD := new(big.Int).Add(deposit0, swapIn)
	if got := v.Balance(usd); got.Cmp(wantUSD) != 0 {
		t.Fatalf("vault usd = %s, want %s", got, wantUSD)
	}
	// The failed session's take still moved funds; vault transfers are not
	// compensated on rollback.
	wantWETH := new(big.Int).Sub(deposit1, swapOut)
	wantWETH.Sub(wantWETH, big.NewInt(10))
	if got := v.Balance(weth); got.Cmp(wantWETH) != 0 {
		t.Fatalf("vault weth = %s, want %s", got, wantWETH)
	}

	events := readEventRecords(t, eventsPath)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}
	names := []string{events[0].EventName, events[1].EventName, events[2].EventName}
	if names[0] != "Initialize" || names[1] != "ModifyPosition" || names[2] != "Swap" {
		t.Fatalf("event names = %v", names)
	}

	failures := readReplayErrors(t, errorsPath)
	if len(failures) != 3 {
		t.Fatalf("failures = %d, want 3", len(failures))
	}
	if failures[0].Line != 5 || failures[0].Op != "session" {
		t.Fatalf("first failure = %+v", failures[0])
	}
	if failures[1].Line != 6 || failures[1].Op != "frobnicate" {
		t.Fatalf("second failure = %+v", failures[1])
	}
	if failures[2].Line != 7 {
		t.Fatalf("third failure = %+v", failures[2])
	}

	cp, ok, err := NewCheckpointStore(checkpointPath, true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastAppliedLine != 7 {
		t.Fatalf("checkpoint line = %d, want 7", cp.LastAppliedLine)
	}
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script.jsonl")
	checkpointPath := filepath.Join(dir, "checkpoint.json")

	writeScript(t, scriptPath, []string{
		`{broken`,
		`{also broken`,
		marshalLine(t, Line{OpSpec: OpSpec{Op: "transfer_in", Currency: usd.Hex(), Amount: "5"}}),
	})

	if err := NewCheckpointStore(checkpointPath, true).Save(2); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	v := vault.NewMemoryVault()
	m := engine.New(engine.Config{}, v, nil, nil)
	runner := NewRunner(Config{
		ScriptPath:        scriptPath,
		CheckpointPath:    checkpointPath,
		CheckpointEnabled: true,
	}, m, v, nil, nil)

	sum, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Total != 1 || sum.Applied != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v, want only the line past the checkpoint", sum)
	}
	if got := v.Balance(usd); got.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("vault usd = %s, want 5", got)
	}

	cp, ok, err := NewCheckpointStore(checkpointPath, true).Load()
	if err != nil || !ok {
		t.Fatalf("load checkpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastAppliedLine != 3 {
		t.Fatalf("checkpoint line = %d, want 3", cp.LastAppliedLine)
	}
}

func readEventRecords(t *testing.T, path string) []model.EventRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	var out []model.EventRecord
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec model.EventRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func readReplayErrors(t *testing.T, path string) []model.ReplayError {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read errors: %v", err)
	}
	var out []model.ReplayError
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec model.ReplayError
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal error record: %v", err)
		}
		out = append(out, rec)
	}
	return out
}
