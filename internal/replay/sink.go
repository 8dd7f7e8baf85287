package replay

import (
	"context"
	"time"

	"flashLedger/internal/model"
	"flashLedger/internal/storage/postgres"
)

const storeSinkTimeout = 30 * time.Second

// StoreSink adapts the Postgres store to the ledger's event sink, retrying
// transient failures with capped exponential backoff.
type StoreSink struct {
	store      *postgres.Store
	maxRetries int
	backoff    time.Duration
}

func NewStoreSink(store *postgres.Store, maxRetries int, backoff time.Duration) *StoreSink {
	return &StoreSink{store: store, maxRetries: maxRetries, backoff: backoff}
}

func (s *StoreSink) PutEventBatch(events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeSinkTimeout)
	defer cancel()
	return withRetry(ctx, s.maxRetries, s.backoff, func(ctx context.Context) error {
		return s.store.InsertEvents(ctx, events)
	})
}
