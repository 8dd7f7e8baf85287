package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"flashLedger/internal/engine"
	"flashLedger/internal/model"
	"flashLedger/internal/storage"
	"flashLedger/internal/storage/postgres"
	"flashLedger/internal/vault"
)

// Config holds runtime settings for a replay.
type Config struct {
	ScriptPath        string
	ErrorsPath        string
	CheckpointPath    string
	CheckpointEnabled bool
	CursorName        string
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Summary counts how a replay went.
type Summary struct {
	Total   uint64
	Applied uint64
	Failed  uint64
}

// Runner drives a pool manager from a JSONL script and persists the outcome.
type Runner struct {
	cfg        Config
	manager    *engine.PoolManager
	vault      *vault.MemoryVault
	store      *postgres.Store
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner. The store is optional; without it events only
// reach the manager's sink and no snapshots are written.
func NewRunner(cfg Config, manager *engine.PoolManager, v *vault.MemoryVault, store *postgres.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CursorName == "" {
		cfg.CursorName = "replay"
	}
	return &Runner{
		cfg:        cfg,
		manager:    manager,
		vault:      v,
		store:      store,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run applies the script line by line. A failed line is recorded and skipped;
// it never stops the replay. The returned summary counts non-empty lines.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	if r.manager == nil {
		return sum, fmt.Errorf("manager is nil")
	}
	if r.vault == nil {
		return sum, fmt.Errorf("vault is nil")
	}
	if r.cfg.ScriptPath == "" {
		return sum, fmt.Errorf("script path is required")
	}

	file, err := os.Open(r.cfg.ScriptPath)
	if err != nil {
		return sum, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	var errWriter *storage.JSONLWriter
	if r.cfg.ErrorsPath != "" {
		errWriter, err = storage.NewJSONLWriter(r.cfg.ErrorsPath, false)
		if err != nil {
			return sum, err
		}
		defer errWriter.Close()
	}

	resume, err := r.loadResume(ctx)
	if err != nil {
		return sum, err
	}
	if resume > 0 {
		r.logger.Info("resume replay", zap.Uint64("last_applied", resume))
	}

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var lineNo uint64
	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if lineNo <= resume {
			continue
		}
		sum.Total++

		if err := r.applyRaw(raw); err != nil {
			sum.Failed++
			r.recordFailure(errWriter, lineNo, raw, err)
		} else {
			sum.Applied++
		}

		if err := r.checkpoint.Save(lineNo); err != nil {
			return sum, err
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("scan script: %w", err)
	}

	if err := r.persist(ctx, lineNo); err != nil {
		return sum, err
	}

	r.logger.Info("replay complete",
		zap.Uint64("total", sum.Total),
		zap.Uint64("applied", sum.Applied),
		zap.Uint64("failed", sum.Failed),
		zap.Int("pools", len(r.manager.PoolIDs())),
	)

	return sum, nil
}

func (r *Runner) loadResume(ctx context.Context) (uint64, error) {
	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return 0, err
	}
	if ok {
		return cp.LastAppliedLine, nil
	}
	if r.store != nil {
		line, ok, err := r.store.LoadCursor(ctx, r.cfg.CursorName)
		if err != nil {
			return 0, fmt.Errorf("load cursor: %w", err)
		}
		if ok {
			return line, nil
		}
	}
	return 0, nil
}

func (r *Runner) applyRaw(raw []byte) error {
	var line Line
	if err := json.Unmarshal(raw, &line); err != nil {
		return fmt.Errorf("parse line: %w", err)
	}
	return r.applyLine(&line)
}

func (r *Runner) applyLine(line *Line) error {
	if line.IsSession() {
		locker, err := parseAddress(line.Locker)
		if err != nil {
			return fmt.Errorf("locker: %w", err)
		}
		if len(line.Ops) == 0 {
			return fmt.Errorf("session has no ops")
		}
		_, err = r.manager.Lock(locker, nil, func([]byte) ([]byte, error) {
			for i := range line.Ops {
				if err := r.applyOp(locker, line.Ops[i]); err != nil {
					return nil, fmt.Errorf("op %d (%s): %w", i, line.Ops[i].Op, err)
				}
			}
			return nil, nil
		})
		return err
	}

	caller, err := parseOptionalAddress(line.Sender)
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	return r.applyOp(caller, line.OpSpec)
}

func (r *Runner) applyOp(caller common.Address, op OpSpec) error {
	switch op.Op {
	case "initialize":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		price, err := parseBig(op.SqrtPriceX96)
		if err != nil {
			return fmt.Errorf("sqrt_price_x96: %w", err)
		}
		_, err = r.manager.Initialize(caller, key, price, nil)
		return err

	case "transfer_in":
		currency, err := parseAddress(op.Currency)
		if err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		amount, err := parseBig(op.Amount)
		if err != nil {
			return err
		}
		return r.vault.Credit(currency, amount)

	case "swap":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		amount, err := parseBig(op.AmountSpecified)
		if err != nil {
			return fmt.Errorf("amount_specified: %w", err)
		}
		limit, err := parseOptionalBig(op.PriceLimitX96)
		if err != nil {
			return fmt.Errorf("sqrt_price_limit_x96: %w", err)
		}
		_, err = r.manager.Swap(caller, key, model.SwapParams{
			ZeroForOne:        op.ZeroForOne,
			AmountSpecified:   amount,
			SqrtPriceLimitX96: limit,
		}, nil)
		return err

	case "modify_position":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		delta, err := parseBig(op.LiquidityDelta)
		if err != nil {
			return fmt.Errorf("liquidity_delta: %w", err)
		}
		_, err = r.manager.ModifyPosition(caller, key, model.ModifyPositionParams{
			TickLower:      op.TickLower,
			TickUpper:      op.TickUpper,
			LiquidityDelta: delta,
		}, nil)
		return err

	case "donate":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		amount0, err := parseOptionalBig(op.Amount0)
		if err != nil {
			return fmt.Errorf("amount0: %w", err)
		}
		amount1, err := parseOptionalBig(op.Amount1)
		if err != nil {
			return fmt.Errorf("amount1: %w", err)
		}
		_, err = r.manager.Donate(caller, key, amount0, amount1, nil)
		return err

	case "take":
		currency, err := parseAddress(op.Currency)
		if err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		to, err := r.recipient(op.To, caller)
		if err != nil {
			return err
		}
		amount, err := parseBig(op.Amount)
		if err != nil {
			return err
		}
		return r.manager.Take(caller, currency, to, amount)

	case "settle":
		currency, err := parseAddress(op.Currency)
		if err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		_, err = r.manager.Settle(caller, currency)
		return err

	case "mint":
		currency, err := parseAddress(op.Currency)
		if err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		to, err := r.recipient(op.To, caller)
		if err != nil {
			return err
		}
		amount, err := parseBig(op.Amount)
		if err != nil {
			return err
		}
		return r.manager.Mint(caller, currency, to, amount)

	case "burn":
		currency, err := parseAddress(op.Currency)
		if err != nil {
			return fmt.Errorf("currency: %w", err)
		}
		amount, err := parseBig(op.Amount)
		if err != nil {
			return err
		}
		return r.manager.Burn(caller, currency, amount)

	case "set_protocol_fees":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		_, err = r.manager.SetProtocolFees(key)
		return err

	case "set_hook_fees":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		_, err = r.manager.SetHookFees(key)
		return err

	case "collect_protocol_fees":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		to, err := r.recipient(op.To, caller)
		if err != nil {
			return err
		}
		_, err = r.manager.CollectProtocolFees(caller, key.ID(), to)
		return err

	case "collect_hook_fees":
		key, err := op.Key.PoolKey()
		if err != nil {
			return err
		}
		to, err := r.recipient(op.To, caller)
		if err != nil {
			return err
		}
		_, err = r.manager.CollectHookFees(caller, key.ID(), to)
		return err

	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) recipient(to string, caller common.Address) (common.Address, error) {
	if to == "" {
		return caller, nil
	}
	addr, err := parseAddress(to)
	if err != nil {
		return common.Address{}, fmt.Errorf("to: %w", err)
	}
	return addr, nil
}

func (r *Runner) recordFailure(w *storage.JSONLWriter, lineNo uint64, raw []byte, applyErr error) {
	var line Line
	op := ""
	locker := ""
	if err := json.Unmarshal(raw, &line); err == nil {
		op = line.Op
		locker = line.Locker
		if line.IsSession() {
			op = "session"
		}
	}

	r.logger.Warn("apply line failed",
		zap.Uint64("line", lineNo),
		zap.String("op", op),
		zap.Error(applyErr),
	)

	if w == nil {
		return
	}
	_ = w.Write(model.ReplayError{
		Line:   lineNo,
		Op:     op,
		Locker: locker,
		Error:  applyErr.Error(),
	})
}

func (r *Runner) persist(ctx context.Context, lastLine uint64) error {
	if r.store == nil {
		return nil
	}

	snapshots := r.snapshots()
	if len(snapshots) > 0 {
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			return r.store.UpsertPoolSnapshots(ctx, snapshots)
		})
		if err != nil {
			return fmt.Errorf("upsert snapshots: %w", err)
		}
	}

	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		return r.store.SaveCursor(ctx, r.cfg.CursorName, lastLine)
	})
	if err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

func (r *Runner) snapshots() []model.PoolSnapshot {
	ids := r.manager.PoolIDs()
	now := time.Now().UTC().Format(time.RFC3339)
	out := make([]model.PoolSnapshot, 0, len(ids))
	for _, id := range ids {
		view, err := r.manager.StateView(id)
		if err != nil {
			continue
		}
		out = append(out, model.PoolSnapshot{
			PoolID:               id.Hex(),
			Currency0:            view.Key.Currency0.Hex(),
			Currency1:            view.Key.Currency1.Hex(),
			Fee:                  view.Key.Fee,
			TickSpacing:          view.Key.TickSpacing,
			Hooks:                view.Key.Hooks.Hex(),
			SqrtPriceX96:         view.Slot0.SqrtPriceX96.String(),
			Tick:                 int32(view.Slot0.Tick),
			Liquidity:            view.Liquidity.String(),
			FeeGrowthGlobal0X128: view.FeeGrowthGlobal0X128.String(),
			FeeGrowthGlobal1X128: view.FeeGrowthGlobal1X128.String(),
			UpdatedAt:            now,
		})
	}
	return out
}
