package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	upstreamLatency   *prometheus.HistogramVec
	upstreamRequests  *prometheus.CounterVec
	upstreamErrors    *prometheus.CounterVec
	droppedRecords    *prometheus.CounterVec
	dashboards        *prometheus.CounterVec
	superseded        prometheus.Counter
	authEvents        *prometheus.CounterVec
	activeSessions    prometheus.Gauge
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rupia_bfa_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rupia_bfa_upstream_latency_seconds",
				Help:    "Latency of calls to the Rupia API, retries included.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_upstream_requests_total",
				Help: "Total calls to the Rupia API.",
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_upstream_errors_total",
				Help: "Total failed calls to the Rupia API.",
			},
			[]string{"service"},
		),
		droppedRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_dropped_records_total",
				Help: "Upstream records dropped because they failed validation.",
			},
			[]string{"resource"},
		),
		dashboards: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_dashboards_total",
				Help: "Dashboards rendered.",
			},
			[]string{"mode"},
		),
		superseded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rupia_bfa_superseded_requests_total",
				Help: "Dashboard requests cancelled by a newer period selection.",
			},
		),
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_auth_events_total",
				Help: "Logins, failed logins and logouts.",
			},
			[]string{"event"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rupia_bfa_active_sessions",
				Help: "Sessions opened by this instance and not yet closed.",
			},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupia_bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordOperationDuration records the duration of a service operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordUpstream records one upstream call and its latency.
func (m *Metrics) RecordUpstream(operation string, d time.Duration) {
	m.upstreamRequests.WithLabelValues(operation).Inc()
	m.upstreamLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(service string) {
	m.upstreamErrors.WithLabelValues(service).Inc()
}

// IncrDroppedRecord counts one upstream record rejected at the fetch boundary.
func (m *Metrics) IncrDroppedRecord(resource string) {
	m.droppedRecords.WithLabelValues(resource).Inc()
}

// IncrDashboard counts a rendered dashboard.
func (m *Metrics) IncrDashboard(degraded bool) {
	mode := "full"
	if degraded {
		mode = "degraded"
	}
	m.dashboards.WithLabelValues(mode).Inc()
}

// IncrSuperseded counts a dashboard request replaced by a newer selection.
func (m *Metrics) IncrSuperseded() {
	m.superseded.Inc()
}

// IncrLogin counts a successful login and opens a session.
func (m *Metrics) IncrLogin() {
	m.authEvents.WithLabelValues("login").Inc()
	m.activeSessions.Inc()
}

// IncrLoginFailure counts a rejected login.
func (m *Metrics) IncrLoginFailure() {
	m.authEvents.WithLabelValues("login_failed").Inc()
}

// IncrLogout counts a logout and closes a session.
func (m *Metrics) IncrLogout() {
	m.authEvents.WithLabelValues("logout").Inc()
	m.activeSessions.Dec()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns the counters behind GET /v1/metrics/bfa.
// Prometheus counters are cumulative, so every value covers the process lifetime.
func (m *Metrics) Snapshot() *domain.BFAMetrics {
	requests := sumCounterVec(m.upstreamRequests)
	errs := sumCounterVec(m.upstreamErrors)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = errs / requests
	}

	return &domain.BFAMetrics{
		UpstreamErrors:     int64(errs),
		DroppedRecords:     int64(sumCounterVec(m.droppedRecords)),
		DashboardsServed:   int64(sumCounterVec(m.dashboards)),
		SupersededRequests: int64(metricValue(m.superseded)),
		Logins:             int64(getCounterValue(m.authEvents, "login")),
		Logouts:            int64(getCounterValue(m.authEvents, "logout")),
		ActiveSessions:     int64(metricValue(m.activeSessions)),
		UpstreamErrorRate:  errorRate,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return metricValue(cv.WithLabelValues(label))
}

// sumCounterVec adds up every label combination of cv.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var total float64
	for metric := range ch {
		total += metricValue(metric)
	}
	return total
}

func metricValue(metric prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := metric.Write(m); err != nil {
		return 0
	}
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	}
	return 0
}
