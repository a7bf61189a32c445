package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	renders     *prometheus.CounterVec
	liveCharts  prometheus.Gauge
	livePages   prometheus.Gauge
	cacheLookup *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry, metrik HTTP dan metrik dashboard.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soit_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "soit_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soit_dashboard_renders_total",
		Help: "Render cycles per view and outcome.",
	}, []string{"view", "outcome"})
	liveCharts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "soit_dashboard_live_charts",
		Help: "Charts created and not yet destroyed.",
	})
	livePages := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "soit_dashboard_live_pages",
		Help: "Loaded dashboard pages held in memory.",
	})
	cacheLookup := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soit_dashboard_cache_lookups_total",
		Help: "Module selection cache lookups by result.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, renders, liveCharts, livePages, cacheLookup)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		renders:         renders,
		liveCharts:      liveCharts,
		livePages:       livePages,
		cacheLookup:     cacheLookup,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveRender counts one render cycle of a dashboard view.
func (m *Metrics) ObserveRender(view, outcome string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(view, outcome).Inc()
}

// ObserveCache counts a selection cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookup.WithLabelValues(result).Inc()
}

// SetLiveCharts records the live chart count.
func (m *Metrics) SetLiveCharts(n int) {
	if m == nil {
		return
	}
	m.liveCharts.Set(float64(n))
}

// SetLivePages records the loaded page count.
func (m *Metrics) SetLivePages(n int) {
	if m == nil {
		return
	}
	m.livePages.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
