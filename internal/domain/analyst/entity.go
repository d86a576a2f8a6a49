package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Analysis is the triage advice produced for one scan's findings.
type Analysis struct {
	ID        AnalysisID `json:"id"`
	ScanID    string     `json:"scan_id,omitempty"`
	Model     string     `json:"model,omitempty"`
	Result    string     `json:"result"` // JSON string from AI
	CreatedAt time.Time  `json:"created_at"`
}
