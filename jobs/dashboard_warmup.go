package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	jobmetrics "github.com/odyssey-erp/soit-dashboard/internal/jobs"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardWarmupJob reloads the report and caches the module ranking for
// every filter combination.
type DashboardWarmupJob struct {
	Source  report.Source
	Cache   *dashboard.Cache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(source report.Source, cache *dashboard.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Source: source, Cache: cache, Logger: logger, Metrics: metrics, Timeout: time.Minute}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload.Reason)
	return err
}

// Run performs one warmup and returns the number of entries written.
func (j *DashboardWarmupJob) Run(ctx context.Context, reason string) (written int, resultErr error) {
	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", reason))
	start := time.Now()

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	store, err := report.Load(ctx, j.Source)
	if err != nil {
		logger.Error("load report", slog.Any("error", err))
		return 0, err
	}
	if !store.Available() {
		logger.Info("no report available, skipping warmup")
		return 0, nil
	}
	for _, w := range report.Validate(store.Report()) {
		logger.Warn("report check", slog.String("warning", w.String()))
	}

	written, err = j.Cache.Warm(ctx, store.Fingerprint(), store.Report())
	j.metrics().AddWarmed(TaskDashboardWarmup, written)
	if err != nil {
		logger.Error("warm module cache", slog.Int("written", written), slog.Any("error", err))
		return written, err
	}
	logger.Info("completed dashboard warmup",
		slog.String("fingerprint", store.Fingerprint()),
		slog.Int("entries", written),
		slog.Duration("duration", time.Since(start)))
	return written, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
