package model

// ReplayError records a script line that could not be applied.
type ReplayError struct {
	Line   uint64 `json:"line"`
	Op     string `json:"op"`
	Locker string `json:"locker,omitempty"`
	Error  string `json:"error"`
}
