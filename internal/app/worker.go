package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robbertpopa/itec-web-2025/internal/config"
	"github.com/robbertpopa/itec-web-2025/internal/observability"
	"github.com/robbertpopa/itec-web-2025/internal/service/summary"
	"github.com/robbertpopa/itec-web-2025/internal/storage/repository"
	"github.com/robbertpopa/itec-web-2025/internal/worker"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

// RunWorker drains the summarize queue on cfg.Worker.Schedule until the
// process is interrupted.
func RunWorker(cfg *config.Config) {
	log := logger.New(cfg.Env)
	log.Info("Starting summary worker with Env: "+cfg.Env, "schedule", cfg.Worker.Schedule)

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, log, cfg.Env, cfg.Tracing)
	if err != nil {
		log.FatalErr("error initializing tracing", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	drivers, err := OpenDrivers(ctx, log, cfg)
	if err != nil {
		log.FatalErr("error opening storage drivers", err)
	}
	defer drivers.Close()

	if cfg.Summarizer.APIKey == "" {
		log.Warn("summarizer api key is not set, tasks will be marked as failed")
	}
	summarizer := summary.NewOpenAI(cfg.Summarizer.BaseURL, cfg.Summarizer.APIKey, cfg.Summarizer.Model, nil)
	svc := summary.NewSummaryService(log, repository.NewQueueRepo(drivers.Store), drivers.Blobs, summarizer, cfg.Worker.Timeout)

	scheduler, err := worker.NewScheduler(log, cfg.Worker.Schedule, svc)
	if err != nil {
		log.FatalErr("error scheduling worker", err)
	}
	scheduler.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	s := <-interrupt
	log.Info("worker signal: " + s.String())

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
}
