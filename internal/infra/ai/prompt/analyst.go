package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior application security analyst triaging secret-scanner findings. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase severity values: critical, high, medium, low, info.
- counts.total must equal counts.critical + counts.high + counts.medium + counts.low.
- findings has one entry per input finding, in input order, keyed by rule_id, file and line.
- Secret values are never provided. Do not ask for them and do not invent them.

Schema (example with empty values):
{
  "counts": {"critical": 0, "high": 0, "medium": 0, "low": 0, "total": 0},
  "findings": [
    {
      "rule_id": "<string>",
      "file": "<string>",
      "line": 0,
      "severity": "<critical|high|medium|low|info>",
      "summary": "<string>",
      "recommendation": "<string>"
    }
  ],
  "advice": "<string>"
}`
}

// findingRef is everything about a finding the model is allowed to see.
type findingRef struct {
	RuleID      string `json:"rule_id"`
	Description string `json:"description"`
	File        string `json:"file"`
	Line        int    `json:"line"`
}

func refs(findings []scans.Finding) []findingRef {
	out := make([]findingRef, 0, len(findings))
	for _, f := range findings {
		out = append(out, findingRef{RuleID: f.RuleID, Description: f.Description, File: f.File, Line: f.StartLine})
	}
	return out
}

// GetUserPrompt builds a compact user message from the finding locations.
// Secrets and matches never leave the process.
func GetUserPrompt(findings []scans.Finding) string {
	b, err := json.Marshal(refs(findings))
	if err != nil {
		b = []byte("[]")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Triage these %d secret-scanner findings and respond with the JSON per schema.\n", len(findings))
	sb.Write(b)
	return sb.String()
}

// Suggestion matches the schema used by the system prompt.
type Suggestion struct {
	Counts   Counts            `json:"counts"`
	Findings []SuggestedAction `json:"findings"`
	Advice   string            `json:"advice"`
}

type Counts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

type SuggestedAction struct {
	RuleID         string `json:"rule_id"`
	File           string `json:"file"`
	Line           int    `json:"line"`
	Severity       string `json:"severity"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// ParseSuggestion checks a model reply against the schema.
func ParseSuggestion(raw string) (Suggestion, error) {
	var s Suggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Suggestion{}, fmt.Errorf("advice is not valid JSON: %w", err)
	}
	s.Counts.Total = s.Counts.Critical + s.Counts.High + s.Counts.Medium + s.Counts.Low
	return s, nil
}
