package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bryanwahyu/leakbridge/internal/bootstrap"
	"github.com/bryanwahyu/leakbridge/internal/config"
	"github.com/bryanwahyu/leakbridge/internal/infra/cache"
	"github.com/bryanwahyu/leakbridge/internal/infra/httpserver"
	"github.com/bryanwahyu/leakbridge/internal/logger"
	"github.com/bryanwahyu/leakbridge/internal/middleware"
)

func main() {
	// path config.yaml; empty falls back to $LEAKBRIDGE_CONFIG
	path := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("logger init error")
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("init error")
	}
	defer app.Close()

	checks := map[string]middleware.HealthChecker{
		"gitleaks": &middleware.ExecutableHealthChecker{Name: cfg.Gitleaks.Executable},
	}
	if app.DB != nil {
		checks["database"] = &middleware.DatabaseHealthChecker{DB: app.DB}
	}

	results := cache.NewMemory(cfg.Server.ResultTTL.Duration)
	results.Start()
	defer results.Stop()

	router := httpserver.NewRouter(httpserver.Deps{
		Scans:          app.Scans,
		Advisor:        app.Advisor,
		Results:        results,
		Metrics:        middleware.NewMetrics(),
		Log:            lg,
		APIKeys:        cfg.Server.APIKeys,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		Checks:         checks,
	})
	defer router.Close()

	host := httpserver.ListenHost(cfg.Server.Host, cfg.Server.APIKeys)
	if len(cfg.Server.APIKeys) == 0 {
		lg.Warn().Str("host", host).Msg("no API keys configured, listening on loopback only; reveal and baseline are refused")
	}

	srv := httpserver.NewServer(host, cfg.Server.Port, router)

	// run server
	go func() {
		lg.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	lg.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error().Err(err).Msg("shutdown error")
	}
}
