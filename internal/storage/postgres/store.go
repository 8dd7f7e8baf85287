package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flashLedger/internal/model"
)

// Store provides Postgres persistence for emitted events and pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertEvents appends a batch of emitted events. Replaying the same stream
// is safe: the sequence number is the conflict key and duplicates are dropped.
func (s *Store) InsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		decoded, err := json.Marshal(event.Decoded)
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", event.Seq, err)
		}
		batch.Queue(`
			INSERT INTO ledger_events (
				seq, event_name, pool_id, emitted_at, decoded, created_at
			) VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (seq) DO NOTHING
		`,
			int64(event.Seq),
			event.EventName,
			event.PoolID,
			event.EmittedAt,
			decoded,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolSnapshots inserts or updates terminal pool states.
func (s *Store) UpsertPoolSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				pool_id, currency0, currency1, fee, tick_spacing, hooks,
				sqrt_price_x96, tick, liquidity,
				fee_growth_global0_x128, fee_growth_global1_x128,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now(), now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				sqrt_price_x96 = EXCLUDED.sqrt_price_x96,
				tick = EXCLUDED.tick,
				liquidity = EXCLUDED.liquidity,
				fee_growth_global0_x128 = EXCLUDED.fee_growth_global0_x128,
				fee_growth_global1_x128 = EXCLUDED.fee_growth_global1_x128,
				updated_at = now()
		`,
			snap.PoolID,
			snap.Currency0,
			snap.Currency1,
			snap.Fee,
			snap.TickSpacing,
			snap.Hooks,
			snap.SqrtPriceX96,
			snap.Tick,
			snap.Liquidity,
			snap.FeeGrowthGlobal0X128,
			snap.FeeGrowthGlobal1X128,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCursor returns the last applied script line for a named replay.
func (s *Store) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("cursor name required")
	}
	var line uint64
	row := s.pool.QueryRow(ctx, `SELECT last_applied_line FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&line); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return line, true, nil
}

// SaveCursor upserts the last applied script line for a named replay.
func (s *Store) SaveCursor(ctx context.Context, name string, line uint64) error {
	if name == "" {
		return fmt.Errorf("cursor name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_applied_line, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_applied_line = EXCLUDED.last_applied_line, updated_at = now()
	`, name, line)
	return err
}
