package scanerrors

import "time"

// Phases a scan error can be recorded in.
const (
	PhaseParse = "parse"
	PhaseWait  = "wait"
	PhaseStart = "start"
)

// ScanError represents a persisted scan error entry
type ScanError struct {
	ID          int64     `json:"id"`
	ScanID      string    `json:"scan_id"`
	Kind        string    `json:"kind,omitempty"`
	Phase       string    `json:"phase,omitempty"` // parse | wait | start
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
