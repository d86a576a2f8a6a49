package scans

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// ErrNoBaselinePath is returned when neither the caller nor the config names
// a baseline file.
var ErrNoBaselinePath = errors.New("no baseline path given or configured")

// GenerateBaseline writes a JSON report of every current finding to out
// (the configured baseline path when out is empty). The configured baseline
// is not applied, otherwise the new baseline would miss known findings.
func (s *Service) GenerateBaseline(ctx context.Context, kind domain.Kind, target, out string) (*Result, error) {
	if out == "" {
		out = s.Settings.BaselinePath
	}
	if out == "" {
		return nil, ErrNoBaselinePath
	}
	out, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", out, err)
	}
	resolved, err := s.target(kind, target)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, scanRequest{
		kind:       kind,
		target:     resolved,
		format:     domain.DefaultFormat,
		reportPath: out,
		noBaseline: true,
	})
}

// Export writes a report in format (the configured report format when
// empty) to out and keeps it. Findings are only parsed back for json.
func (s *Service) Export(ctx context.Context, kind domain.Kind, target, out, format string) (*Result, error) {
	if out == "" {
		return nil, errors.New("export needs an output path")
	}
	if format == "" {
		format = s.Settings.ReportFormat
	}
	format = strings.ToLower(format)
	out, err := filepath.Abs(out)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", out, err)
	}
	resolved, err := s.target(kind, target)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, scanRequest{
		kind:       kind,
		target:     resolved,
		format:     format,
		reportPath: out,
	})
}
