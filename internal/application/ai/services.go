package ai

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/leakbridge/internal/application"
	"github.com/bryanwahyu/leakbridge/internal/domain/ai"
	"github.com/bryanwahyu/leakbridge/internal/domain/analyst"
	"github.com/bryanwahyu/leakbridge/internal/domain/scans"
	"github.com/bryanwahyu/leakbridge/internal/infra/ai/prompt"
)

// OfflineModel labels advice produced without a provider.
const OfflineModel = "offline"

type Service struct {
	advisor ai.Advisor
	model   string
	repo    analyst.Repository
	clock   application.Clock
	log     zerolog.Logger
}

// NewService wires an advisor; a nil advisor falls back to offline advice.
// repo may be nil, in which case analyses are not stored.
func NewService(advisor ai.Advisor, model string, repo analyst.Repository, log zerolog.Logger) *Service {
	if advisor == nil {
		model = OfflineModel
	}
	return &Service{
		advisor: advisor,
		model:   model,
		repo:    repo,
		clock:   application.SystemClock{},
		log:     log.With().Str("component", "advisor").Logger(),
	}
}

// Advise masks the findings, asks for triage advice and stores it against scanID.
func (s *Service) Advise(ctx context.Context, scanID string, findings []scans.Finding) (*analyst.Analysis, error) {
	masked := scans.MaskAll(findings)

	var (
		result string
		err    error
	)
	if s.advisor == nil {
		result = prompt.OfflineAdvice(masked)
	} else {
		result, err = s.advisor.Advise(ctx, masked)
		if err != nil {
			return nil, fmt.Errorf("advise: %w", err)
		}
	}

	a := &analyst.Analysis{
		ID:        analyst.AnalysisID(uuid.NewString()),
		ScanID:    scanID,
		Model:     s.model,
		Result:    result,
		CreatedAt: s.clock.Now(),
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, a); err != nil {
			s.log.Warn().Err(err).Str("scan_id", scanID).Msg("storing analysis failed")
		}
	}
	s.log.Info().Str("scan_id", scanID).Str("model", s.model).Int("findings", len(findings)).Msg("advice produced")
	return a, nil
}

// Latest returns the newest stored analysis for a scan.
func (s *Service) Latest(ctx context.Context, scanID string) (*analyst.Analysis, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.LatestByScan(ctx, scanID)
}
