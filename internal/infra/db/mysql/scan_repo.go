package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

var _ domain.Repository = (*ScanRepository)(nil)

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

const scanColumns = `id, triggered_at, kind, target, status, findings_total,
       exit_code, artifact_url, raw_format, duration_ms, command`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.Scan, error) {
	var s domain.Scan
	if err := row.Scan(
		&s.ID, &s.TriggeredAt, &s.Kind, &s.Target, &s.Status, &s.FindingsTotal,
		&s.ExitCode, &s.ArtifactURL, &s.RawFormat, &s.DurationMS, &s.Command,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save insert/update Scan record
func (r *ScanRepository) Save(ctx context.Context, s *domain.Scan) error {
	const q = `
INSERT INTO leak_scans
(id, triggered_at, kind, target, status, findings_total,
 exit_code, artifact_url, raw_format, duration_ms, command)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 findings_total=VALUES(findings_total),
 exit_code=VALUES(exit_code),
 artifact_url=VALUES(artifact_url), raw_format=VALUES(raw_format), duration_ms=VALUES(duration_ms);
`
	// non-nullable string columns get "-" instead of ""
	kind := stringOrDash(string(s.Kind))
	status := stringOrDash(string(s.Status))
	triggered := s.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		s.ID, triggered, kind, stringOrDash(s.Target), status, s.FindingsTotal,
		s.ExitCode, s.ArtifactURL, s.RawFormat, s.DurationMS, s.Command,
	)
	return err
}

// Get by ID
func (r *ScanRepository) Get(ctx context.Context, id domain.ScanID) (*domain.Scan, error) {
	q := `SELECT ` + scanColumns + ` FROM leak_scans WHERE id=? LIMIT 1;`
	return scanRow(r.db.QueryRowContext(ctx, q, id))
}

// Latest scans
func (r *ScanRepository) Latest(ctx context.Context, limit int) ([]*domain.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + scanColumns + ` FROM leak_scans ORDER BY triggered_at DESC LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Paginate with offset + limit (classic pagination)
func (r *ScanRepository) Paginate(ctx context.Context, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	where, args := buildFilters(filters)
	query := `SELECT ` + scanColumns + ` FROM leak_scans` + where +
		"\n ORDER BY triggered_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var scans []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		scans = append(scans, s)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.Count(ctx, filters)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       scans,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Cursor-based pagination (after cursorTime, cursorID)
func (r *ScanRepository) Cursor(ctx context.Context, cursorTime time.Time, cursorID string, pageSize int) ([]*domain.Scan, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	q := `SELECT ` + scanColumns + ` FROM leak_scans
WHERE (triggered_at < ? OR (triggered_at = ? AND id < ?))
ORDER BY triggered_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, cursorTime, cursorTime, cursorID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Scan
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the total number of records matching the given filters
func (r *ScanRepository) Count(ctx context.Context, filters map[string]any) (int64, error) {
	where, args := buildFilters(filters)
	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM leak_scans"+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildFilters(filters map[string]any) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	// fixed order keeps the generated SQL stable
	for _, key := range []string{"kind", "status", "target"} {
		value, ok := filters[key]
		if !ok {
			continue
		}
		switch key {
		case "kind", "status":
			clauses = append(clauses, key+" = ?")
			args = append(args, value)
		case "target":
			clauses = append(clauses, "target LIKE ?")
			args = append(args, "%"+escapeLikePattern(fmt.Sprint(value))+"%")
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLikePattern escapes special characters in LIKE patterns to prevent SQL injection
func escapeLikePattern(s string) string {
	// Escape backslash first, then other LIKE special characters
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
