package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flashLedger/internal/config"
	"flashLedger/internal/engine"
	"flashLedger/internal/model"
	"flashLedger/internal/replay"
	"flashLedger/internal/storage"
	"flashLedger/internal/storage/postgres"
	"flashLedger/internal/vault"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Script == "" {
		return fmt.Errorf("script path is required")
	}

	var owner common.Address
	if cfg.Owner != "" {
		if !common.IsHexAddress(cfg.Owner) {
			return fmt.Errorf("invalid owner address %q", cfg.Owner)
		}
		owner = common.HexToAddress(cfg.Owner)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	sink := storage.EventSink(storage.NewJsonlStorage(cfg.Out))
	if store != nil {
		sink = storage.Tee{sink, replay.NewStoreSink(store, cfg.MaxRetries, cfg.RetryBackoff)}
	}

	engineCfg := engine.Config{
		Owner:                owner,
		MaxCurrenciesTouched: cfg.MaxCurrencies,
	}
	if cfg.ProtocolFee != 0 || cfg.HookFee != 0 {
		engineCfg.FeeController = replay.StaticFees{
			Protocol: model.PackedFee(cfg.ProtocolFee),
			Hook:     model.PackedFee(cfg.HookFee),
		}
	}
	if cfg.DynamicFee != 0 {
		engineCfg.FeeResolver = replay.StaticRate{Fee: cfg.DynamicFee}
	}

	v := vault.NewMemoryVault()
	manager := engine.New(engineCfg, v, sink, logger)

	runner := replay.NewRunner(replay.Config{
		ScriptPath:        cfg.Script,
		ErrorsPath:        cfg.Errors,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, manager, v, store, logger)

	logger.Info("replay start",
		zap.String("script", cfg.Script),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	sum, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		logger.Warn("replay finished with failures",
			zap.Uint64("total", sum.Total),
			zap.Uint64("failed", sum.Failed),
		)
	}
	return nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
