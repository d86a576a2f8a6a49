package scans

import (
	"context"
	"errors"
	"time"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// ErrNoResult is returned by a ResultStore that holds nothing for the key.
var ErrNoResult = errors.New("no scan result")

// Result is returned by every scan operation. Callers that want a "last
// results" view keep it in a ResultStore themselves.
type Result struct {
	ID          string           `json:"id"`
	Kind        domain.Kind      `json:"kind"`
	Target      string           `json:"target"`
	Command     []string         `json:"command"`
	Findings    []domain.Finding `json:"findings"`
	ExitCode    int              `json:"exit_code"`
	TimedOut    bool             `json:"timed_out"`
	Output      string           `json:"output,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	DurationMS  int64            `json:"duration_ms"`
	ReportPath  string           `json:"report_path,omitempty"`
	ArtifactURL string           `json:"artifact_url,omitempty"`
}

// HasFindings reports whether the scan found anything.
func (r *Result) HasFindings() bool {
	return r != nil && len(r.Findings) > 0
}

// Masked returns a copy safe to keep or send elsewhere: secrets and matches
// are replaced and the raw process output is dropped.
func (r *Result) Masked() *Result {
	out := *r
	out.Findings = domain.MaskAll(r.Findings)
	out.Command = append([]string(nil), r.Command...)
	out.Output = ""
	return &out
}

// ResultStore keeps results for later display.
type ResultStore interface {
	Put(ctx context.Context, r *Result) error
	Get(ctx context.Context, id string) (*Result, error)
	Last(ctx context.Context) (*Result, error)
}
