package scans

import "strings"

// Placeholder replaces redacted secrets.
const Placeholder = "==REDACTED=="

// Redact replaces every literal occurrence of each finding's secret with
// Placeholder. Findings are applied in order, so an earlier finding claims
// any overlapping text.
func Redact(text string, findings []Finding) string {
	for _, f := range findings {
		if f.Secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, f.Secret, Placeholder)
	}
	return text
}
