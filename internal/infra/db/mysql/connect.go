package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS leak_scans (
  id VARCHAR(64) PRIMARY KEY,
  triggered_at DATETIME(6) NOT NULL,
  kind VARCHAR(16) NOT NULL,
  target VARCHAR(1024) NOT NULL,
  status VARCHAR(16) NOT NULL,
  findings_total INT NOT NULL DEFAULT 0,
  exit_code INT NOT NULL DEFAULT 0,
  artifact_url VARCHAR(1024) NOT NULL DEFAULT '',
  raw_format VARCHAR(16) NOT NULL DEFAULT '',
  duration_ms BIGINT NOT NULL DEFAULT 0,
  command TEXT NOT NULL,
  INDEX idx_leak_scans_triggered (triggered_at, id)
)`,
	`CREATE TABLE IF NOT EXISTS leak_scan_errors (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  scan_id VARCHAR(64) NOT NULL,
  kind VARCHAR(16) NOT NULL,
  phase VARCHAR(16) NOT NULL,
  message TEXT NOT NULL,
  details_json JSON NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_leak_scan_errors_scan (scan_id, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS leak_analyses (
  id VARCHAR(64) PRIMARY KEY,
  scan_id VARCHAR(64) NOT NULL,
  model VARCHAR(64) NOT NULL,
  result_json JSON NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_leak_analyses_scan (scan_id, created_at)
)`,
}

// Migrate creates the history tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
