package storage

import (
	"fmt"
	"sync"

	"flashLedger/internal/model"
)

// JsonlStorage appends emitted events to a JSONL file. Each batch opens,
// appends, and closes the file so everything flushed so far survives a crash.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutEventBatch appends a batch of events as JSON lines.
func (s *JsonlStorage) PutEventBatch(events []model.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := NewJSONLWriter(s.path, true)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	for _, event := range events {
		if err := w.Write(event); err != nil {
			w.Close()
			return fmt.Errorf("append event %d: %w", event.Seq, err)
		}
	}
	return w.Close()
}
