package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/leakbridge/internal/domain/scans"
)

var scanCols = []string{
	"id", "triggered_at", "kind", "target", "status", "findings_total",
	"exit_code", "artifact_url", "raw_format", "duration_ms", "command",
}

var at = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestScanRepositorySave(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE SET")).
		WithArgs("scan-1", at, "git", "/srv/repo", "timed_out", 0, -1, "", "json", int64(30000), "gitleaks git /srv/repo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewScanRepository(db).Save(context.Background(), &domain.Scan{
		ID:          "scan-1",
		TriggeredAt: at,
		Kind:        domain.KindGit,
		Target:      "/srv/repo",
		Status:      domain.StatusTimedOut,
		ExitCode:    -1,
		RawFormat:   "json",
		DurationMS:  30000,
		Command:     "gitleaks git /srv/repo",
	})
	require.NoError(t, err)
}

func TestScanRepositoryGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_scans WHERE id=$1 LIMIT 1")).
		WithArgs("scan-1").
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow("scan-1", at, "dir", "/srv/app", "success", 0, 0, "", "json", 7, "gitleaks dir /srv/app"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_scans WHERE id=$1 LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(scanCols))

	s, err := repo.Get(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", s.Target)
	assert.Equal(t, domain.StatusSuccess, s.Status)

	_, err = repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestScanRepositoryCursorReusesTimePlaceholder(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (triggered_at < $1 OR (triggered_at = $1 AND id < $2))")).
		WithArgs(at, "scan-9", 20).
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow("scan-8", at, "dir", "/a", "success", 1, 1, "", "json", 1, "c"))

	list, err := NewScanRepository(db).Cursor(context.Background(), at, "scan-9", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ScanID("scan-8"), list[0].ID)
}

func TestScanRepositoryPaginate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs("failed", 10, 0).
		WillReturnRows(sqlmock.NewRows(scanCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leak_scans WHERE status = $1")).
		WithArgs("failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	res, err := NewScanRepository(db).Paginate(context.Background(), 0, 10, map[string]any{"status": "failed"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.TotalPages)
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS leak_scans (",
		"CREATE INDEX IF NOT EXISTS idx_leak_scans_triggered",
		"CREATE TABLE IF NOT EXISTS leak_scan_errors (",
		"CREATE TABLE IF NOT EXISTS leak_analyses (",
	} {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
}

func TestAnalystLatestByScanMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE scan_id=$1")).
		WithArgs("scan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "scan_id", "model", "result_json", "created_at"}))

	a, err := NewAnalystRepository(db).LatestByScan(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Nil(t, a)
}
