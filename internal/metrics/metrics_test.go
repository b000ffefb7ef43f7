package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// newTestCollector creates a Collector registered with a fresh registry
// so tests don't conflict with each other or with the default registry.
func newTestCollector(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewWith(reg), reg
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	g.Write(m)
	return m.GetGauge().GetValue()
}

func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	c.Write(m)
	return m.GetCounter().GetValue()
}

func TestObserveRequest(t *testing.T) {
	c, reg := newTestCollector(t)

	c.ObserveRequest("reports.mine", 200, 100*time.Millisecond)
	c.ObserveRequest("reports.mine", 200, 200*time.Millisecond)
	c.ObserveRequest("reports.mine", 0, time.Second)

	if v := getCounterValue(c.requestsTotal.WithLabelValues("reports.mine", "200")); v != 2 {
		t.Errorf("expected 2 successful requests, got %v", v)
	}
	if v := getCounterValue(c.requestsTotal.WithLabelValues("reports.mine", "0")); v != 1 {
		t.Errorf("expected 1 network failure, got %v", v)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() == "analytics_console_backend_request_duration_seconds" {
			found = true
			m := f.GetMetric()
			if len(m) == 0 {
				t.Fatal("no metric samples")
			}
			if m[0].GetHistogram().GetSampleCount() != 3 {
				t.Errorf("expected 3 samples, got %d", m[0].GetHistogram().GetSampleCount())
			}
		}
	}
	if !found {
		t.Error("request duration metric not found")
	}
}

func TestStaleAndFallbackCounters(t *testing.T) {
	c, _ := newTestCollector(t)

	c.StaleDiscarded("reports")
	c.StaleDiscarded("reports")
	c.MockFallback("empty")
	c.MockFallback("error")
	c.MockFallback("error")

	if v := getCounterValue(c.staleDiscarded.WithLabelValues("reports")); v != 2 {
		t.Errorf("expected stale=2, got %v", v)
	}
	if v := getCounterValue(c.mockFallbacks.WithLabelValues("error")); v != 2 {
		t.Errorf("expected error fallbacks=2, got %v", v)
	}
	if v := getCounterValue(c.mockFallbacks.WithLabelValues("empty")); v != 1 {
		t.Errorf("expected empty fallbacks=1, got %v", v)
	}
}

func TestDownloaded(t *testing.T) {
	c, _ := newTestCollector(t)

	c.Downloaded("pdf", 100)
	c.Downloaded("pdf", 50)
	c.Downloaded("csv", 10)

	if v := getCounterValue(c.downloads.WithLabelValues("pdf")); v != 2 {
		t.Errorf("expected pdf downloads=2, got %v", v)
	}
	if v := getCounterValue(c.downloadBytes.WithLabelValues("pdf")); v != 150 {
		t.Errorf("expected pdf bytes=150, got %v", v)
	}
	if v := getCounterValue(c.downloads.WithLabelValues("csv")); v != 1 {
		t.Errorf("expected csv downloads=1, got %v", v)
	}
}

func TestSetBackendHealth(t *testing.T) {
	c, _ := newTestCollector(t)

	c.SetBackendHealth("insights", true)
	if v := getGaugeValue(c.backendHealth.WithLabelValues("insights")); v != 1 {
		t.Errorf("expected health=1 (healthy), got %v", v)
	}

	c.SetBackendHealth("insights", false)
	if v := getGaugeValue(c.backendHealth.WithLabelValues("insights")); v != 0 {
		t.Errorf("expected health=0 (unhealthy), got %v", v)
	}
}

func TestRemoveProbe(t *testing.T) {
	c, reg := newTestCollector(t)

	c.SetBackendHealth("insights", true)
	c.SetBackendHealth("reports", true)
	c.RemoveProbe("insights")

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "probe" && l.GetValue() == "insights" {
					t.Errorf("metric %s still has the insights probe after removal", f.GetName())
				}
			}
		}
	}
}

func TestSessions(t *testing.T) {
	c, _ := newTestCollector(t)

	c.SetActiveSessions(4)
	if v := getGaugeValue(c.sessionsActive); v != 4 {
		t.Errorf("expected active sessions=4, got %v", v)
	}

	c.SessionEvicted("idle")
	c.SessionEvicted("idle")
	c.SessionEvicted("lifetime")
	c.SessionLimitReached()

	if v := getCounterValue(c.sessionsEvicted.WithLabelValues("idle")); v != 2 {
		t.Errorf("expected idle evictions=2, got %v", v)
	}
	if v := getCounterValue(c.sessionsEvicted.WithLabelValues("lifetime")); v != 1 {
		t.Errorf("expected lifetime evictions=1, got %v", v)
	}
	if v := getCounterValue(c.sessionsLimited); v != 1 {
		t.Errorf("expected rejected=1, got %v", v)
	}
}

func TestNewRegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWith(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	NewWith(reg)
}
