package app

import (
	"context"
	"log/slog"

	"github.com/odyssey-erp/soit-dashboard/internal/platform/db"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

// OpenReportSource builds the source selected by REPORT_SOURCE. The returned
// func releases whatever the source holds open and is never nil.
func OpenReportSource(ctx context.Context, cfg *Config) (report.Source, func(), error) {
	switch cfg.ReportSource {
	case "none":
		return nil, func() {}, nil
	case "postgres":
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, func() {}, err
		}
		return report.PostgresSource{DB: pool}, pool.Close, nil
	default:
		return report.FileSource{Path: cfg.ReportPath}, func() {}, nil
	}
}

// LoadReport loads the report and logs its consistency warnings. A broken
// payload is logged and yields an empty store so the service still starts.
func LoadReport(ctx context.Context, src report.Source, logger *slog.Logger) *report.Store {
	store, err := report.Load(ctx, src)
	if err != nil {
		logger.Error("load report", slog.Any("error", err))
		return store
	}
	if !store.Available() {
		logger.Warn("no report available, dashboard views are suppressed")
		return store
	}
	warnings := report.Validate(store.Report())
	for _, w := range warnings {
		logger.Warn("report check", slog.String("warning", w.String()))
	}
	logger.Info("report loaded",
		slog.String("fingerprint", store.Fingerprint()),
		slog.Int("warnings", len(warnings)))
	return store
}
