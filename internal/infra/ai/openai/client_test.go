package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

func TestBuildRequestTokenField(t *testing.T) {
	req := buildRequest("o3-mini", nil)
	assert.Equal(t, maxTokens, req.MaxCompletionTokens)
	assert.Zero(t, req.MaxTokens)

	req = buildRequest("gpt-4o-mini", nil)
	assert.Equal(t, maxTokens, req.MaxTokens)
	assert.Zero(t, req.MaxCompletionTokens)
}

func TestBuildRequestOmitsSecrets(t *testing.T) {
	req := buildRequest(DefaultModel, []scans.Finding{{RuleID: "r", File: "f", Secret: "s3cr3t-value", Match: "tok=s3cr3t-value"}})
	for _, m := range req.Messages {
		assert.NotContains(t, m.Content, "s3cr3t-value")
	}
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, DefaultModel, (&Client{}).model())
	assert.Equal(t, "o3", (&Client{Model: "o3"}).model())
}
