package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/soit-dashboard/internal/app"
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	"github.com/odyssey-erp/soit-dashboard/internal/dashboard/chart"
	dashboardhttp "github.com/odyssey-erp/soit-dashboard/internal/dashboard/http"
	"github.com/odyssey-erp/soit-dashboard/internal/observability"
	"github.com/odyssey-erp/soit-dashboard/internal/platform/cache"
	"github.com/odyssey-erp/soit-dashboard/internal/preference"
	"github.com/odyssey-erp/soit-dashboard/internal/shared"
	"github.com/odyssey-erp/soit-dashboard/internal/view"
	"github.com/odyssey-erp/soit-dashboard/jobs"
)

const sweepInterval = time.Minute

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "dashboard")

	redisClient, err := cache.New(ctx, cfg.RedisConfig("dashboard"))
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
	store := app.LoadReport(ctx, source, logger)

	sizer, err := dashboard.NewSizer(dashboard.HeightPolicy(cfg.ChartHeightPolicy))
	if err != nil {
		logger.Error("chart sizer", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	renderer := chart.NewRenderer(chart.WithObserver(metrics.SetLiveCharts))

	datasetCache := dashboard.NewCache(redisClient, cfg.CacheTTL, metrics)
	selector := dashboard.CachedSelector{
		Cache:       datasetCache,
		Report:      store.Report(),
		Fingerprint: store.Fingerprint(),
		Logger:      logger,
	}
	engine := &dashboard.Engine{
		Report:   store.Report(),
		Selector: selector,
		Sizer:    sizer,
		Surface:  renderer,
		Recorder: metrics,
		Logger:   logger,
	}
	pages := dashboard.NewPages(engine, cfg.PageIdleTTL, metrics.SetLivePages)
	defer pages.CloseAll()
	go pages.Run(ctx, sweepInterval)

	sessionManager := shared.NewSessionManager(redisClient, "soit_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	dashboardHandler := dashboardhttp.NewHandler(dashboardhttp.HandlerConfig{
		Logger:    logger,
		Pages:     pages,
		Charts:    renderer,
		Store:     store,
		Selector:  selector,
		Sizer:     sizer,
		Templates: templates,
		CSRF:      csrfManager,
		Prefs: func(visitor string) preference.Store {
			return preference.NewRedisStore(redisClient, visitor)
		},
	})

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	if cfg.WarmupOnStart && store.Available() {
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Warn("jobs client", slog.Any("error", err))
		} else {
			if info, err := client.EnqueueDashboardWarmup(ctx, "startup"); err != nil {
				logger.Warn("enqueue warmup", slog.Any("error", err))
			} else {
				logger.Info("warmup enqueued", slog.String("task_id", info.ID))
			}
			if err := client.Close(); err != nil {
				logger.Warn("jobs client close", slog.Any("error", err))
			}
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
