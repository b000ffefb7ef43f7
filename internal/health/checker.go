package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/metrics"
	"github.com/evmarket/analytics-console/internal/transport"
)

// Status represents the health status of a backend probe.
type Status int

const (
	StatusUnknown Status = iota
	StatusHealthy
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ProbeHealth holds health information for one probe.
type ProbeHealth struct {
	Path                string        `json:"path"`
	Status              Status        `json:"status"`
	LastCheck           time.Time     `json:"last_check"`
	LastStatusCode      int           `json:"last_status_code,omitempty"`
	Latency             time.Duration `json:"latency"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
}

// Caller performs one backend request. *transport.Client satisfies it.
type Caller interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Checker periodically probes analytics backend endpoints.
type Checker struct {
	mu      sync.RWMutex
	probes  map[string]*ProbeHealth
	caller  Caller
	metrics *metrics.Collector

	interval         time.Duration
	failureThreshold int
	timeout          time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewChecker creates a health checker for the probes in hcCfg. m may be nil.
func NewChecker(caller Caller, m *metrics.Collector, hcCfg config.HealthCheckConfig) *Checker {
	c := &Checker{
		probes:           make(map[string]*ProbeHealth),
		caller:           caller,
		metrics:          m,
		interval:         hcCfg.Interval,
		failureThreshold: hcCfg.FailureThreshold,
		timeout:          hcCfg.Timeout,
		stopCh:           make(chan struct{}),
	}
	if c.failureThreshold <= 0 {
		c.failureThreshold = 1
	}
	c.SetProbes(hcCfg.Probes)
	return c
}

// SetProbes replaces the probe set. State of probes that keep their path is
// preserved; removed probes are forgotten.
func (c *Checker) SetProbes(probes map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, ph := range c.probes {
		if path, ok := probes[name]; !ok || path != ph.Path {
			delete(c.probes, name)
			if c.metrics != nil {
				c.metrics.RemoveProbe(name)
			}
		}
	}
	for name, path := range probes {
		if _, ok := c.probes[name]; !ok {
			c.probes[name] = &ProbeHealth{Path: path, Status: StatusUnknown}
		}
	}
}

// Start begins periodic health checking.
func (c *Checker) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run()
	}()
	slog.Info("health checker started", "interval", c.interval, "threshold", c.failureThreshold)
}

// Stop stops the health checker. Safe to call multiple times.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
	slog.Info("health checker stopped")
}

func (c *Checker) run() {
	// Run immediately on start
	c.CheckAll(context.Background())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.CheckAll(context.Background())
		case <-c.stopCh:
			return
		}
	}
}

// CheckAll probes every configured endpoint in parallel and waits for the results.
func (c *Checker) CheckAll(ctx context.Context) {
	c.mu.RLock()
	targets := make(map[string]string, len(c.probes))
	for name, ph := range c.probes {
		targets[name] = ph.Path
	}
	c.mu.RUnlock()

	var wg sync.WaitGroup
	for name, path := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.probe(ctx, name, path)
		}()
	}
	wg.Wait()
}

func (c *Checker) probe(ctx context.Context, name, path string) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.caller.Do(ctx, transport.Request{
		Endpoint: "probe." + name,
		Method:   http.MethodGet,
		Path:     path,
	})
	elapsed := time.Since(start)

	code, healthy, errMsg := classify(resp, err)
	c.updateStatus(name, path, result{code: code, healthy: healthy, err: errMsg, latency: elapsed})
}

// classify treats any answer below 500 as a live backend. Authorization
// failures and missing records still prove the service is up.
func classify(resp *transport.Response, err error) (code int, healthy bool, errMsg string) {
	if err == nil {
		return resp.StatusCode, true, ""
	}
	var te *transport.Error
	if errors.As(err, &te) && te.Err == nil {
		if te.StatusCode < http.StatusInternalServerError {
			return te.StatusCode, true, ""
		}
		return te.StatusCode, false, te.Error()
	}
	return 0, false, err.Error()
}

type result struct {
	code    int
	healthy bool
	err     string
	latency time.Duration
}

func (c *Checker) updateStatus(name, path string, r result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ph, ok := c.probes[name]
	if !ok || ph.Path != path {
		// Probe removed or changed while the request was in flight.
		return
	}
	ph.LastCheck = time.Now()
	ph.LastStatusCode = r.code
	ph.Latency = r.latency

	if r.healthy {
		if ph.ConsecutiveFailures > 0 {
			slog.Info("backend probe recovered", "probe", name, "failures", ph.ConsecutiveFailures)
		}
		ph.Status = StatusHealthy
		ph.ConsecutiveFailures = 0
		ph.LastError = ""
	} else {
		ph.ConsecutiveFailures++
		ph.LastError = r.err
		if ph.ConsecutiveFailures >= c.failureThreshold {
			if ph.Status != StatusUnhealthy {
				slog.Warn("backend probe marked unhealthy", "probe", name, "path", path, "failures", ph.ConsecutiveFailures, "error", r.err)
			}
			ph.Status = StatusUnhealthy
		}
	}

	if c.metrics != nil {
		c.metrics.SetBackendHealth(name, ph.Status == StatusHealthy)
	}
}

// IsHealthy returns whether a probe is healthy (or unknown, which is treated as healthy).
func (c *Checker) IsHealthy(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ph, ok := c.probes[name]
	if !ok {
		return true
	}
	return ph.Status != StatusUnhealthy
}

// GetStatus returns the health of a probe.
func (c *Checker) GetStatus(name string) ProbeHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ph, ok := c.probes[name]
	if !ok {
		return ProbeHealth{Status: StatusUnknown}
	}
	return *ph
}

// GetAllStatuses returns the health of every probe.
func (c *Checker) GetAllStatuses() map[string]ProbeHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]ProbeHealth, len(c.probes))
	for name, ph := range c.probes {
		out[name] = *ph
	}
	return out
}

// Unhealthy returns the sorted names of unhealthy probes.
func (c *Checker) Unhealthy() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	for name, ph := range c.probes {
		if ph.Status == StatusUnhealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// OverallHealthy returns true if no probe is unhealthy.
func (c *Checker) OverallHealthy() bool {
	return len(c.Unhealthy()) == 0
}
