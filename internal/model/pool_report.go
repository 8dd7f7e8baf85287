package model

// PoolReport stores per-pool totals aggregated from an event stream.
type PoolReport struct {
	PoolID      string `json:"pool_id"`
	Initializes uint64 `json:"initializes"`
	Modifies    uint64 `json:"modifies"`
	SwapCount   uint64 `json:"swap_count"`
	Volume0     string `json:"volume0"`
	Volume1     string `json:"volume1"`
	Fee0        string `json:"fee0"`
	Fee1        string `json:"fee1"`
	FirstSeq    uint64 `json:"first_seq"`
	LastSeq     uint64 `json:"last_seq"`
}
