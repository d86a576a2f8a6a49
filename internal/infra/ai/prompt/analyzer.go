package prompt

import (
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

type ruleAdvice struct {
	prefixes       []string
	severity       string
	recommendation string
}

// Ordered most specific first; the first matching prefix wins.
var ruleTable = []ruleAdvice{
	{[]string{"private-key"}, "critical", "Remove private keys from repos; use a secure secrets manager and rotate affected keys immediately."},
	{[]string{"aws-"}, "critical", "Revoke the access key, create a new one with least privilege, and configure credentials via IAM roles/secret manager."},
	{[]string{"github-"}, "critical", "Revoke the token, create a new token with minimal scopes, and store in CI/CD secrets."},
	{[]string{"gcp-", "google-"}, "critical", "Restrict the API key by IP/referrer/service, rotate it, and move to secret management."},
	{[]string{"slack-"}, "high", "Revoke the token in Slack admin, rotate, and scope minimally."},
	{[]string{"stripe-"}, "critical", "Rotate the key in Stripe dashboard and move to server-side secret storage."},
	{[]string{"twilio-"}, "high", "Rotate the key in Twilio console; avoid committing credentials."},
	{[]string{"openai-"}, "high", "Revoke and rotate the key in OpenAI dashboard; keep keys in environment or secret manager."},
	{[]string{"jwt"}, "medium", "Avoid committing tokens; rotate, invalidate sessions, and prefer short-lived tokens from an identity provider."},
	{[]string{"generic-api-key"}, "medium", "Do not hardcode secrets. Use environment variables or a secret manager (Vault, AWS Secrets Manager, etc.)."},
}

func adviceFor(ruleID string) (string, string) {
	id := strings.ToLower(ruleID)
	for _, r := range ruleTable {
		for _, p := range r.prefixes {
			if strings.HasPrefix(id, p) {
				return r.severity, r.recommendation
			}
		}
	}
	return "low", "Verify whether the value is a live credential; if so rotate it and load it from a secret store."
}

// OfflineAdvice produces schema-shaped advice from rule ids alone, for use
// when no model is configured.
func OfflineAdvice(findings []scans.Finding) string {
	out := Suggestion{Findings: make([]SuggestedAction, 0, len(findings))}
	for _, ref := range refs(findings) {
		sev, rec := adviceFor(ref.RuleID)
		out.Findings = append(out.Findings, SuggestedAction{
			RuleID:         ref.RuleID,
			File:           ref.File,
			Line:           ref.Line,
			Severity:       sev,
			Summary:        ref.Description,
			Recommendation: rec,
		})
		switch sev {
		case "critical":
			out.Counts.Critical++
		case "high":
			out.Counts.High++
		case "medium":
			out.Counts.Medium++
		case "low":
			out.Counts.Low++
		}
	}
	out.Counts.Total = out.Counts.Critical + out.Counts.High + out.Counts.Medium + out.Counts.Low

	switch {
	case out.Counts.Critical > 0:
		out.Advice = "Immediate action required: rotate exposed credentials, revoke tokens, and remove secrets from history. Keep secret scanning in CI/CD."
	case out.Counts.Total > 0:
		out.Advice = "Review each finding, rotate anything live, and move credentials to a managed secret store."
	default:
		out.Advice = "No findings. Keep secret scanning enabled in pre-commit hooks and CI/CD."
	}

	b, err := json.Marshal(out)
	if err != nil {
		return `{"counts":{"critical":0,"high":0,"medium":0,"low":0,"total":0},"findings":[],"advice":""}`
	}
	return string(b)
}
