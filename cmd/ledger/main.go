package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "ledger",
		Short:        "Singleton liquidity pool ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a JSONL operation script against the ledger",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("script", "", "input operation script JSONL")
	replayCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL path")
	replayCmd.Flags().String("errors", "./data/replay_errors.jsonl", "failed lines JSONL path")
	replayCmd.Flags().String("checkpoint", "./data/replay_checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().String("pg-dsn", "", "Postgres DSN (optional)")
	replayCmd.Flags().String("owner", "", "protocol fee owner address")
	replayCmd.Flags().Int("max-currencies", 256, "max currencies touched per session")
	replayCmd.Flags().Uint32("protocol-fee", 0, "packed protocol fee applied to every pool")
	replayCmd.Flags().Uint32("hook-fee", 0, "packed hook fee applied to every pool")
	replayCmd.Flags().Uint32("dynamic-fee", 0, "swap fee rate for dynamic-fee pools")
	replayCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	replayCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate emitted events into per-pool totals",
		RunE:  runReport,
	}

	reportCmd.Flags().String("in", "", "input events JSONL")
	reportCmd.Flags().String("out", "./data/report.jsonl", "output report JSONL")
	reportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(reportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
