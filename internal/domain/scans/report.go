package scans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zricethezav/gitleaks/v8/report"
)

// ParseReport decodes a gitleaks JSON report. Empty input yields no findings
// and no error. Malformed input yields no findings and an error wrapping
// ErrReportParse; callers are expected to log it rather than fail.
func ParseReport(raw []byte) ([]Finding, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []Finding{}, nil
	}

	var arr []report.Finding
	if err := json.Unmarshal(raw, &arr); err != nil {
		return []Finding{}, fmt.Errorf("%w: %v", ErrReportParse, err)
	}

	out := make([]Finding, 0, len(arr))
	for _, gf := range arr {
		out = append(out, newFinding(gf))
	}
	return out, nil
}

// newFinding copies a gitleaks finding, filling descriptive fields that the
// report left out. Secret, match and commit stay empty when absent so that
// redaction and commit display can tell.
func newFinding(gf report.Finding) Finding {
	return Finding{
		RuleID:      orUnknown(gf.RuleID),
		Description: orUnknown(gf.Description),
		File:        orUnknown(gf.File),
		StartLine:   gf.StartLine,
		EndLine:     gf.EndLine,
		StartColumn: gf.StartColumn,
		EndColumn:   gf.EndColumn,
		Match:       gf.Match,
		Secret:      gf.Secret,
		Commit:      gf.Commit,
		Author:      orUnknown(gf.Author),
		Email:       gf.Email,
		Date:        orUnknown(gf.Date),
		Message:     gf.Message,
		Tags:        append([]string(nil), gf.Tags...),
		Entropy:     gf.Entropy,
		Fingerprint: gf.Fingerprint,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
