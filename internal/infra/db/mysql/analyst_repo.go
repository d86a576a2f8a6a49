package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/analyst"
)

type AnalystRepository struct {
	db *sql.DB
}

var _ domain.Repository = (*AnalystRepository)(nil)

func NewAnalystRepository(db *sql.DB) *AnalystRepository {
	return &AnalystRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalystRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO leak_analyses
  (id, scan_id, model, result_json, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  scan_id=VALUES(scan_id), model=VALUES(model), result_json=VALUES(result_json);
`
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, a.ID, stringOrDash(a.ScanID), stringOrDash(a.Model), result, createdAt)
	return err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalystRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, scan_id, model, result_json, created_at
FROM leak_analyses
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		if err := rows.Scan(&a.ID, &a.ScanID, &a.Model, &a.Result, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// LatestByScan returns the newest analysis stored for a scan, or nil when there is none
func (r *AnalystRepository) LatestByScan(ctx context.Context, scanID string) (*domain.Analysis, error) {
	const q = `
SELECT id, scan_id, model, result_json, created_at
FROM leak_analyses
WHERE scan_id=?
ORDER BY created_at DESC
LIMIT 1;
`
	var a domain.Analysis
	if err := r.db.QueryRowContext(ctx, q, scanID).Scan(&a.ID, &a.ScanID, &a.Model, &a.Result, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
