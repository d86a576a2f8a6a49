package mysql

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

	"github.com/bryanwahyu/leakbridge/internal/domain/analyst"
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
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs("scan-1", at, "dir", "-", "success", 2, 1, "", "json", int64(40), "gitleaks dir /x").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewScanRepository(db).Save(context.Background(), &domain.Scan{
		ID:            "scan-1",
		TriggeredAt:   at,
		Kind:          domain.KindDir,
		Status:        domain.StatusSuccess,
		FindingsTotal: 2,
		ExitCode:      1,
		RawFormat:     "json",
		DurationMS:    40,
		Command:       "gitleaks dir /x",
	})
	require.NoError(t, err)
}

func TestScanRepositoryGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewScanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_scans WHERE id=? LIMIT 1")).
		WithArgs("scan-1").
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow("scan-1", at, "git", "/srv/repo", "success", 3, 1, "http://minio/x.json", "json", 12, "gitleaks git /srv/repo"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_scans WHERE id=? LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(scanCols))

	s, err := repo.Get(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ScanID("scan-1"), s.ID)
	assert.Equal(t, domain.KindGit, s.Kind)
	assert.Equal(t, 3, s.FindingsTotal)
	assert.Equal(t, int64(12), s.DurationMS)
	assert.True(t, at.Equal(s.TriggeredAt))

	_, err = repo.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestScanRepositoryCursor(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (triggered_at < ? OR (triggered_at = ? AND id < ?))")).
		WithArgs(at, at, "scan-9", 5).
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow("scan-8", at, "dir", "/a", "success", 0, 0, "", "json", 1, "c").
			AddRow("scan-7", at.Add(-time.Minute), "dir", "/b", "failed", 0, 2, "", "json", 1, "c"))

	list, err := NewScanRepository(db).Cursor(context.Background(), at, "scan-9", 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.ScanID("scan-8"), list[0].ID)
	assert.Equal(t, domain.StatusFailed, list[1].Status)
}

func TestScanRepositoryPaginate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_scans WHERE kind = ?")).
		WithArgs("git", 2, 2).
		WillReturnRows(sqlmock.NewRows(scanCols).
			AddRow("scan-3", at, "git", "/r", "success", 1, 1, "", "json", 5, "c"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leak_scans WHERE kind = ?")).
		WithArgs("git").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	res, err := NewScanRepository(db).Paginate(context.Background(), 2, 2, map[string]any{"kind": "git"})
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.False(t, res.HasNext())
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)
	for _, table := range []string{"leak_scans (", "leak_scan_errors (", "leak_analyses ("} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS leak_scans (")).
		WillReturnError(errors.New("denied"))
	assert.EqualError(t, Migrate(context.Background(), db), "denied")
}

func TestAnalystLatestByScanMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM leak_analyses")).
		WithArgs("scan-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "scan_id", "model", "result_json", "created_at"}))

	a, err := NewAnalystRepository(db).LatestByScan(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAnalystSaveDefaultsEmptyResult(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO leak_analyses")).
		WithArgs("a-1", "scan-1", "offline", "{}", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewAnalystRepository(db).Save(context.Background(), &analyst.Analysis{
		ID:        "a-1",
		ScanID:    "scan-1",
		Model:     "offline",
		CreatedAt: at,
	})
	require.NoError(t, err)
}
