// Package bootstrap wires config into the scan and advice services shared
// by the API server and the CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/leakbridge/internal/application"
	appai "github.com/bryanwahyu/leakbridge/internal/application/ai"
	appscans "github.com/bryanwahyu/leakbridge/internal/application/scans"
	"github.com/bryanwahyu/leakbridge/internal/config"
	domai "github.com/bryanwahyu/leakbridge/internal/domain/ai"
	"github.com/bryanwahyu/leakbridge/internal/domain/analyst"
	"github.com/bryanwahyu/leakbridge/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/leakbridge/internal/infra/db/mysql"
	"github.com/bryanwahyu/leakbridge/internal/infra/db/postgres"
	"github.com/bryanwahyu/leakbridge/internal/infra/executor/gitleaks"
	minioStore "github.com/bryanwahyu/leakbridge/internal/infra/storage"
)

type App struct {
	Scans   *appscans.Service
	Advisor *appai.Service
	Runner  *gitleaks.Runner
	DB      *sql.DB
}

// Close waits for abandoned scans to clean up, then releases the database
// handle, if any.
func (a *App) Close() error {
	if a.Scans != nil {
		a.Scans.Wait()
	}
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// New builds the services. The database, MinIO and OpenAI are optional:
// each is only connected when its section of the config is filled in.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	runner := gitleaks.NewRunner(log)
	svc := &appscans.Service{
		Runner:   runner,
		Clock:    application.SystemClock{},
		Log:      log.With().Str("component", "scans").Logger(),
		Settings: appscans.SettingsFromConfig(cfg.Gitleaks),
		RepoRoot: gitleaks.RepositoryRoot,
	}
	app := &App{Scans: svc, Runner: runner}

	var analyses analyst.Repository
	if cfg.Database.Driver != "" {
		db, err := connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = db
		switch cfg.Database.Driver {
		case "postgres":
			svc.Repo = postgres.NewScanRepository(db)
			svc.Errors = postgres.NewScanErrorRepository(db)
			analyses = postgres.NewAnalystRepository(db)
		default:
			svc.Repo = mysqlp.NewScanRepository(db)
			svc.Errors = mysqlp.NewScanErrorRepository(db)
			analyses = mysqlp.NewAnalystRepository(db)
		}
	}

	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("minio init: %w", err)
		}
		svc.Artifacts = store
	}

	var advisor domai.Advisor
	if cfg.OpenAI.APIKey != "" {
		advisor = openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	}
	app.Advisor = appai.NewService(advisor, cfg.OpenAI.Model, analyses, log)
	return app, nil
}

func connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
		if err == nil {
			err = postgres.Migrate(ctx, db)
		}
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err == nil {
			err = mysqlp.Migrate(ctx, db)
		}
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	return db, nil
}
