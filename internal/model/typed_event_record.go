package model

import "encoding/json"

// EventRecord is the JSON representation of an Event used when reading
// notification streams back, leaving the payload raw for per-kind decoding.
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	EventName string          `json:"event_name"`
	PoolID    string          `json:"pool_id"`
	EmittedAt string          `json:"emitted_at"`
	Decoded   json.RawMessage `json:"decoded"`
}
