package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/soit-dashboard/internal/app"
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	jobmetrics "github.com/odyssey-erp/soit-dashboard/internal/jobs"
	"github.com/odyssey-erp/soit-dashboard/internal/platform/cache"
	"github.com/odyssey-erp/soit-dashboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "worker")

	redisClient, err := cache.New(ctx, cfg.RedisConfig("worker"))
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	source, closeSource, err := app.OpenReportSource(ctx, cfg)
	if err != nil {
		logger.Error("open report source", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeSource()

	metrics := jobmetrics.NewMetrics(nil)
	datasetCache := dashboard.NewCache(redisClient, cfg.CacheTTL, nil)
	warmupJob := jobs.NewDashboardWarmupJob(source, datasetCache, logger, metrics)

	warmupTask, err := jobs.NewDashboardWarmupTask("scheduled")
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "5 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
