package ai

import (
	"context"

	"github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// Advisor turns masked findings into remediation advice (JSON text).
type Advisor interface {
	Advise(ctx context.Context, findings []scans.Finding) (string, error)
}
