package model

// Event names emitted by the pool manager.
const (
	EventInitialize     = "Initialize"
	EventModifyPosition = "ModifyPosition"
	EventSwap           = "Swap"
)

// Event is an emitted notification enriched with its pool identity and a
// session-global sequence number. Decoded holds the per-kind payload struct.
type Event struct {
	Seq       uint64      `json:"seq"`
	EventName string      `json:"event_name"`
	PoolID    string      `json:"pool_id"`
	EmittedAt string      `json:"emitted_at"`
	Decoded   interface{} `json:"decoded"`
}
