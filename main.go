package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"social-analytics/api"
	"social-analytics/config"
	"social-analytics/models"
	"social-analytics/platforms"
	"social-analytics/scraper/profile"
	"social-analytics/services"
	"social-analytics/storage"
	"social-analytics/utils"
)

const (
	jobRetention  = 24 * time.Hour
	pruneInterval = time.Hour
)

const usage = `usage:
  social-analytics                      start the HTTP server
  social-analytics report <platform> <handle>
  social-analytics export <file.csv>`

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	var err error
	switch {
	case len(args) == 0:
		err = serve(ctx, cfg, logger)
	case args[0] == "report" && len(args) == 3:
		err = report(ctx, cfg, logger, args[1], args[2])
	case args[0] == "export" && len(args) == 2:
		err = export(ctx, cfg, logger, args[1])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// app bundles the long-lived components shared by every mode.
type app struct {
	registry  *platforms.Registry
	analytics *services.AnalyticsService
}

func newApp(cfg *config.Config, logger *utils.Logger, recorder services.AnalyticsRecorder) *app {
	httpClient := platforms.NewHTTPClient(cfg.MaxRetries, cfg.RequestTimeout, logger)
	registry := platforms.NewRegistry(cfg.Platforms, httpClient, profile.New(cfg, logger), logger)
	aggregator := services.NewAggregator(services.NewLexiconScorer(), logger)

	return &app{
		registry:  registry,
		analytics: services.NewAnalyticsService(registry, aggregator, recorder, logger, cfg.MaxConcurrency, cfg.RateLimitMs),
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Social Analytics starting ===")
	logger.Info("Config: addr %s | concurrency: %d | rate: %dms | tick: %v",
		cfg.HTTPAddr, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.SchedulerTick)

	store, err := storage.NewPostgresStore(ctx, cfg.DSN(), logger)
	if err != nil {
		logger.Error("Make sure Docker is running: docker compose up -d")
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer store.Close()

	a := newApp(cfg, logger, store)
	logger.Info("API clients active for: %v", a.registry.Active())

	scheduler := services.NewScheduler(a.registry, logger, cfg.SchedulerTick, cfg.RequestTimeout)
	go scheduler.Run(ctx)
	go pruneJobs(ctx, scheduler, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(store, a.analytics, scheduler, logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pruneJobs(ctx context.Context, scheduler *services.Scheduler, logger *utils.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := scheduler.Prune(jobRetention); n > 0 {
				logger.Debug("Pruned %d finished jobs", n)
			}
		}
	}
}

func report(ctx context.Context, cfg *config.Config, logger *utils.Logger, rawPlatform, handle string) error {
	platform, err := models.ParsePlatform(rawPlatform)
	if err != nil {
		return err
	}

	a := newApp(cfg, logger, nil)
	services.PrintReport(os.Stdout, a.analytics.Account(ctx, platform, handle))
	return nil
}

func export(ctx context.Context, cfg *config.Config, logger *utils.Logger, path string) error {
	store, err := storage.NewPostgresStore(ctx, cfg.DSN(), logger)
	if err != nil {
		return fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	defer store.Close()

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}

	results := newApp(cfg, logger, store).analytics.Collect(ctx, accounts)

	w, err := storage.CreateCSVFile(path)
	if err != nil {
		return err
	}
	if err := w.Write(results); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	logger.Info("Analytics for %d accounts saved to: %s", len(results), path)
	return nil
}
