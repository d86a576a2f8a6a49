package scans

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

// Latest ambil N scan terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if s.Repo == nil {
		return nil, ErrHistoryDisabled
	}
	return s.Repo.Latest(ctx, limit)
}

// Get ambil 1 scan by id
func (s *Service) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	if s.Repo == nil {
		return nil, ErrHistoryDisabled
	}
	scan, err := s.Repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResult
	}
	return scan, err
}

// Page returns one page of scan history, newest first. Recognised filter
// keys are kind, status and target.
func (s *Service) Page(ctx context.Context, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	if s.Repo == nil {
		return domain.PaginatedResult{}, ErrHistoryDisabled
	}
	return s.Repo.Paginate(ctx, page, pageSize, filters)
}

// Before pages by cursor: scans older than (at, id), newest first.
func (s *Service) Before(ctx context.Context, at time.Time, id string, pageSize int) ([]*domain.Scan, error) {
	if s.Repo == nil {
		return nil, ErrHistoryDisabled
	}
	return s.Repo.Cursor(ctx, at, id, pageSize)
}
