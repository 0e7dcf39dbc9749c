// Package app wires the scraping pipeline from configuration. Both the API
// server and the CLI build their dependencies through it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/user/hotel-scraper/internal/adapter/chromedp_headers"
	"github.com/user/hotel-scraper/internal/adapter/graphql"
	"github.com/user/hotel-scraper/internal/adapter/postgres"
	"github.com/user/hotel-scraper/internal/adapter/sqlite"
	"github.com/user/hotel-scraper/internal/repository"
	"github.com/user/hotel-scraper/internal/usecase"
	"github.com/user/hotel-scraper/pkg/config"
	"github.com/user/hotel-scraper/pkg/metrics"
	"github.com/user/hotel-scraper/pkg/telemetry"
)

type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	Rows         repository.HotelRowRepository
	Scraper      *usecase.DailyScraper
	Orchestrator *usecase.RangeOrchestrator
	Reconciler   *usecase.MissingDateReconciler

	shutdownTracing func(context.Context) error
}

// New builds the pipeline. The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, serviceName string) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	rows, err := OpenRows(ctx, cfg)
	if err != nil {
		shutdownTracing(ctx)
		return nil, err
	}
	logger.Info("storage ready", zap.String("storage", cfg.Storage))

	sessions := graphql.NewSessionFactory(graphql.Options{
		BaseURL:   cfg.SearchBaseURL,
		Path:      cfg.SearchPath,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeoutDuration(),
	}, rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.RequestBurst, 1)), logger.Named("graphql"))

	if cfg.CaptureHeaders {
		capturer := chromedp_headers.NewCapturer(cfg.CaptureURL, cfg.SearchPath, cfg.UserAgent, 60*time.Second, logger.Named("capture"))
		headers, err := capturer.Capture(ctx)
		if err != nil {
			// Plain requests still work for most searches.
			logger.Warn("header capture failed, continuing without forwarded headers", zap.Error(err))
		} else {
			sessions.SetHeaders(headers)
		}
	}

	scraper := usecase.NewDailyScraper(sessions, m, logger.Named("scraper"), cfg.PageConcurrency)
	return &App{
		Config:          cfg,
		Logger:          logger,
		Registry:        reg,
		Metrics:         m,
		Rows:            rows,
		Scraper:         scraper,
		Orchestrator:    usecase.NewRangeOrchestrator(scraper, rows, cfg.DayWorkers, loc, logger.Named("orchestrator")),
		Reconciler:      usecase.NewMissingDateReconciler(rows, scraper, loc, logger.Named("reconciler")),
		shutdownTracing: shutdownTracing,
	}, nil
}

// OpenRows opens the storage backend selected by STORAGE.
func OpenRows(ctx context.Context, cfg *config.Config) (repository.HotelRowRepository, error) {
	switch cfg.Storage {
	case "postgres":
		return postgres.Connect(ctx, cfg.PostgresURL)
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func (a *App) Close(ctx context.Context) {
	if err := a.Rows.Close(); err != nil {
		a.Logger.Warn("failed to close storage", zap.Error(err))
	}
	if err := a.shutdownTracing(ctx); err != nil {
		a.Logger.Warn("failed to flush traces", zap.Error(err))
	}
}
