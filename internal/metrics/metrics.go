package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "analytics_console"

// Collector holds all Prometheus metrics for the analytics console.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	staleDiscarded  *prometheus.CounterVec
	mockFallbacks   *prometheus.CounterVec
	downloads       *prometheus.CounterVec
	downloadBytes   *prometheus.CounterVec
	backendHealth   *prometheus.GaugeVec
	sessionsActive  prometheus.Gauge
	sessionsEvicted *prometheus.CounterVec
	sessionsLimited prometheus.Counter
}

// New creates all metrics and registers them with the default registry.
func New() *Collector {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics and registers them with reg.
func NewWith(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of analytics backend requests by endpoint and status code (0 for network errors)",
			},
			[]string{"endpoint", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Duration of analytics backend requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"endpoint"},
		),
		staleDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_discarded_total",
				Help:      "Responses dropped because a newer request of the same hook was issued",
			},
			[]string{"hook"},
		),
		mockFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mock_insights_shown_total",
				Help:      "Times demo insights replaced live data, by reason",
			},
			[]string{"reason"},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_exports_total",
				Help:      "Report exports saved, by format",
			},
			[]string{"format"},
		),
		downloadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_export_bytes_total",
				Help:      "Bytes of report exports saved, by format",
			},
			[]string{"format"},
		),
		backendHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backend_health",
				Help:      "Health of a backend probe (1=healthy, 0=unhealthy)",
			},
			[]string{"probe"},
		),
		sessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Number of live console sessions",
			},
		),
		sessionsEvicted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_evicted_total",
				Help:      "Console sessions closed by the reaper, by reason",
			},
			[]string{"reason"},
		),
		sessionsLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_rejected_total",
				Help:      "Session creations refused because the session limit was reached",
			},
		),
	}

	reg.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.staleDiscarded,
		c.mockFallbacks,
		c.downloads,
		c.downloadBytes,
		c.backendHealth,
		c.sessionsActive,
		c.sessionsEvicted,
		c.sessionsLimited,
	)

	return c
}

// ObserveRequest records one backend request.
func (c *Collector) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	c.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// StaleDiscarded counts a response dropped by a hook.
func (c *Collector) StaleDiscarded(hook string) {
	c.staleDiscarded.WithLabelValues(hook).Inc()
}

// MockFallback counts a demo insights substitution.
func (c *Collector) MockFallback(reason string) {
	c.mockFallbacks.WithLabelValues(reason).Inc()
}

// Downloaded counts a saved export.
func (c *Collector) Downloaded(format string, bytes int) {
	c.downloads.WithLabelValues(format).Inc()
	c.downloadBytes.WithLabelValues(format).Add(float64(bytes))
}

// SetBackendHealth sets the health gauge for a probe.
func (c *Collector) SetBackendHealth(probe string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	c.backendHealth.WithLabelValues(probe).Set(val)
}

// RemoveProbe removes the health gauge of a probe that is no longer configured.
func (c *Collector) RemoveProbe(probe string) {
	c.backendHealth.DeleteLabelValues(probe)
}

// SetActiveSessions updates the live session gauge.
func (c *Collector) SetActiveSessions(n int) {
	c.sessionsActive.Set(float64(n))
}

// SessionEvicted counts a session closed by the reaper.
func (c *Collector) SessionEvicted(reason string) {
	c.sessionsEvicted.WithLabelValues(reason).Inc()
}

// SessionLimitReached counts a refused session creation.
func (c *Collector) SessionLimitReached() {
	c.sessionsLimited.Inc()
}
