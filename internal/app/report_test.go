package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

func TestOpenReportSourceSelectsByConfig(t *testing.T) {
	ctx := context.Background()

	src, closeFn, err := OpenReportSource(ctx, &Config{ReportSource: "none"})
	require.NoError(t, err)
	assert.Nil(t, src)
	closeFn()

	src, closeFn, err = OpenReportSource(ctx, &Config{ReportSource: "file", ReportPath: "data/report.json"})
	require.NoError(t, err)
	assert.Equal(t, report.FileSource{Path: "data/report.json"}, src)
	closeFn()
}

func TestLoadReportLogsWarnings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	payload := `{"by_module": {"CS101": -2}, "resolved_rate": {"Week1": 140}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := LoadReport(context.Background(), report.FileSource{Path: path}, logger)

	require.True(t, store.Available())
	assert.Contains(t, buf.String(), "report check")
	assert.Contains(t, buf.String(), "report loaded")
}

func TestLoadReportToleratesMissingAndBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := LoadReport(context.Background(), report.FileSource{Path: filepath.Join(dir, "missing.json")}, logger)
	assert.False(t, store.Available())
	assert.Contains(t, buf.String(), "no report available")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
	store = LoadReport(context.Background(), report.FileSource{Path: broken}, logger)
	assert.False(t, store.Available())
	assert.Contains(t, buf.String(), "load report")
}
