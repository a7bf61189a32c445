package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/soit-dashboard/internal/dashboard"
	jobmetrics "github.com/odyssey-erp/soit-dashboard/internal/jobs"
	"github.com/odyssey-erp/soit-dashboard/internal/report"
)

const warmupReport = `{
  "by_module": {"CS101": 12, "CS102": 7},
  "by_module_attendance": {"CS101": 3},
  "week_risk": {"weeks": ["W1"], "series": [{"name": "High", "data": [2]}]}
}`

func newWarmupJob(t *testing.T, path string) (*DashboardWarmupJob, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := dashboard.NewCache(client, time.Hour, nil)
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	return NewDashboardWarmupJob(report.FileSource{Path: path}, cache, nil, metrics), mr
}

func TestDashboardWarmupWritesEveryCombination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(warmupReport), 0o600))
	job, mr := newWarmupJob(t, path)

	task, err := NewDashboardWarmupTask("test")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	store, err := report.Load(context.Background(), report.FileSource{Path: path})
	require.NoError(t, err)
	// ("" + W1) x 2 bases x 4 scopes
	assert.Len(t, mr.Keys(), 16)
	assert.True(t, mr.Exists(dashboard.Key(store.Fingerprint(), dashboard.FilterState{Week: "W1"})))
}

func TestDashboardWarmupWithoutReportIsNoop(t *testing.T) {
	job, mr := newWarmupJob(t, filepath.Join(t.TempDir(), "missing.json"))
	written, err := job.Run(context.Background(), "test")
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, mr.Keys())
}

func TestDashboardWarmupMalformedPayload(t *testing.T) {
	job, _ := newWarmupJob(t, "")
	err := job.Handle(context.Background(), asynq.NewTask(TaskDashboardWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDashboardWarmupBrokenReportFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"by_module": [`), 0o600))
	job, _ := newWarmupJob(t, path)
	_, err := job.Run(context.Background(), "test")
	require.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestJobsHealth(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}, nil)
	rr := httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault, Pending: 3, Failed: 1}, body)

	h = NewHandler(stubInspector{err: errors.New("redis down")}, nil)
	rr = httptest.NewRecorder()
	h.health(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
