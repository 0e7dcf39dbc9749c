package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/user/hotel-scraper/internal/adapter/redis"
	"github.com/user/hotel-scraper/internal/app"
	"github.com/user/hotel-scraper/internal/delivery/http/handler"
	"github.com/user/hotel-scraper/internal/delivery/http/router"
	"github.com/user/hotel-scraper/internal/usecase"
	"github.com/user/hotel-scraper/pkg/config"
	"github.com/user/hotel-scraper/pkg/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Pipeline (storage, search client, scrapers) ---
	a, err := app.New(ctx, cfg, log, "hotel-scraper-api")
	if err != nil {
		log.Fatal("failed to initialize pipeline", zap.Error(err))
	}
	defer a.Close(context.Background())

	// --- Redis ---
	rdb, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("unable to connect to redis", zap.Error(err))
	}
	defer rdb.Close()
	log.Info("redis connection established", zap.String("addr", cfg.RedisAddr))

	queueRepo := redis.NewJobQueueRepo(rdb)
	submittedRepo := redis.NewSubmittedJobRepo(rdb)
	stateRepo := redis.NewJobStateRepo(rdb)

	// --- Use Cases ---
	jobManager := usecase.NewJobManager(submittedRepo, stateRepo, queueRepo, cfg.JobDedupWindow(), log.Named("jobs"))
	jobRunner := usecase.NewJobRunner(queueRepo, stateRepo, a.Rows, a.Orchestrator, a.Reconciler, cfg.JobDedupWindow(), a.Metrics, log.Named("runner"))

	runnerErr := make(chan error, 1)
	go func() {
		runnerErr <- jobRunner.Run(ctx, cfg.JobPollInterval())
	}()

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(jobManager, a.Reconciler, log.Named("http"))
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, a.Metrics, a.Registry, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case err := <-runnerErr:
		if err != nil {
			// A mismatch means the upstream changed what it searches for; stop everything.
			shutdown(server, log)
			a.Close(context.Background())
			log.Fatal("job runner stopped", zap.Error(err))
		}
	}

	shutdown(server, log)
	log.Info("server exiting")
}

func shutdown(server *http.Server, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}
