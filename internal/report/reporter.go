// Package report aggregates an emitted event stream into per-pool totals.
package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"flashLedger/internal/model"
	"flashLedger/internal/storage"
)

// Reporter reads an events JSONL file and writes one report line per pool.
type Reporter struct {
	logger *zap.Logger
}

func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger}
}

// Run aggregates inputPath into outputPath. Undecodable lines are logged and
// skipped; reports are ordered by pool id.
func (r *Reporter) Run(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	accumulators := make(map[string]*Accumulator)
	var total, applied, failed int

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode event", zap.Error(err))
			continue
		}
		if record.PoolID == "" {
			failed++
			r.logger.Warn("event without pool id", zap.Uint64("seq", record.Seq))
			continue
		}

		acc, ok := accumulators[record.PoolID]
		if !ok {
			acc = NewAccumulator(record.PoolID)
			accumulators[record.PoolID] = acc
		}
		if err := acc.AddRecord(record); err != nil {
			failed++
			r.logger.Warn("apply event", zap.Uint64("seq", record.Seq), zap.Error(err))
			continue
		}
		applied++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	ids := make([]string, 0, len(accumulators))
	for id := range accumulators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	writer, err := storage.NewJSONLWriter(outputPath, false)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := writer.Write(accumulators[id].Report()); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	r.logger.Info("report complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("failed", failed),
		zap.Int("pools", len(ids)),
	)

	return nil
}
