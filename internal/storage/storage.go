package storage

import "flashLedger/internal/model"

// EventSink receives committed batches of emitted notifications.
type EventSink interface {
	PutEventBatch(events []model.Event) error
}

// Discard drops every batch.
type Discard struct{}

func (Discard) PutEventBatch([]model.Event) error { return nil }

// Tee fans each batch out to several sinks, stopping at the first failure.
type Tee []EventSink

func (t Tee) PutEventBatch(events []model.Event) error {
	for _, sink := range t {
		if err := sink.PutEventBatch(events); err != nil {
			return err
		}
	}
	return nil
}
