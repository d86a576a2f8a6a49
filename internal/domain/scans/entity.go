package scans

import (
	"time"
)

// ID tipe untuk Scan
type ScanID string

// Kind is the gitleaks subcommand used for a scan.
type Kind string

const (
	KindDir Kind = "dir"
	KindGit Kind = "git"
)

// Status enum
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
)

// Unknown is the placeholder for string fields missing from a report.
const Unknown = "unknown"

// Finding is one secret reported by gitleaks. Values are never mutated after
// ParseReport builds them.
type Finding struct {
	RuleID      string   `json:"rule_id" jsonschema:"title=Rule ID"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	StartLine   int      `json:"start_line"`
	EndLine     int      `json:"end_line"`
	StartColumn int      `json:"start_column"`
	EndColumn   int      `json:"end_column"`
	Match       string   `json:"match"`
	Secret      string   `json:"secret"`
	Commit      string   `json:"commit,omitempty"`
	Author      string   `json:"author"`
	Email       string   `json:"email,omitempty"`
	Date        string   `json:"date"`
	Message     string   `json:"message,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Entropy     float32  `json:"entropy,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// HasCommit reports whether the finding came from a repository scan.
func (f Finding) HasCommit() bool {
	return f.Commit != "" && f.Commit != Unknown
}

// Masked returns a copy with secret and match replaced by the redaction
// placeholder. Used wherever findings leave the process.
func (f Finding) Masked() Finding {
	out := f
	if out.Secret != "" {
		out.Secret = Placeholder
	}
	if out.Match != "" {
		out.Match = Placeholder
	}
	out.Tags = append([]string(nil), f.Tags...)
	return out
}

// MaskAll masks every finding in the slice.
func MaskAll(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	for i, f := range findings {
		out[i] = f.Masked()
	}
	return out
}

// Aggregate Root: Scan is the persisted summary of one gitleaks run.
type Scan struct {
	ID            ScanID    `json:"id"`
	TriggeredAt   time.Time `json:"triggered_at"`
	Kind          Kind      `json:"kind"`
	Target        string    `json:"target"`
	Status        Status    `json:"status"`
	FindingsTotal int       `json:"findings_total"`
	ExitCode      int       `json:"exit_code"`
	ArtifactURL   string    `json:"artifact_url,omitempty"`
	RawFormat     string    `json:"raw_format,omitempty"`
	DurationMS    int64     `json:"duration_ms"`
	Command       string    `json:"command,omitempty"`
}
