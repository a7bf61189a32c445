package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const latestReportQuery = `SELECT payload::text FROM dashboard_reports ORDER BY created_at DESC LIMIT 1`

// RowQuerier is the subset of pgxpool.Pool used to fetch reports.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads the newest payload from the dashboard_reports table.
type PostgresSource struct {
	DB RowQuerier
}

// Fetch implements Source. An empty table is ErrNoReport.
func (s PostgresSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	if s.DB == nil {
		return nil, "", ErrNoReport
	}
	var payload *string
	if err := s.DB.QueryRow(ctx, latestReportQuery).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNoReport
		}
		return nil, "", fmt.Errorf("report: query latest: %w", err)
	}
	if payload == nil {
		return nil, "", ErrNoReport
	}
	return []byte(*payload), FormatJSON, nil
}
