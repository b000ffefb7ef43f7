// Package console serves the provider analytics page and a JSON API over the
// analytics backend, plus health, status and Prometheus endpoints.
package console

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/evmarket/analytics-console/internal/auth"
	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/health"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/metrics"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/session"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Server is the console HTTP server.
type Server struct {
	mu      sync.RWMutex
	cfg     *config.Config
	factory *hooks.Factory

	sessions    *session.Manager
	healthCheck *health.Checker
	metrics     *metrics.Collector
	gatherer    prometheus.Gatherer
	tokens      *auth.TokenSource
	sink        download.Sink
	httpServer  *http.Server
	startTime   time.Time
}

// NewServer creates the console. hc and m may be nil.
func NewServer(cfg *config.Config, f *hooks.Factory, hc *health.Checker, m *metrics.Collector, tokens *auth.TokenSource) *Server {
	s := &Server{
		cfg:         cfg,
		factory:     f,
		healthCheck: hc,
		metrics:     m,
		tokens:      tokens,
		sink:        download.NewDir(cfg.API.DownloadDir),
		startTime:   time.Now(),
	}
	s.sessions = session.NewManager(cfg.Sessions, s.newPage)
	if m != nil {
		s.sessions.SetOnEvicted(func(_, reason string) { m.SessionEvicted(reason) })
		s.sessions.SetOnLimit(m.SessionLimitReached)
	}
	return s
}

// SetGatherer selects the registry served on /metrics. The default
// registry is used otherwise.
func (s *Server) SetGatherer(g prometheus.Gatherer) {
	s.gatherer = g
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Reload applies a new configuration. Existing sessions keep the pages they
// were built with; new sessions use f.
func (s *Server) Reload(cfg *config.Config, f *hooks.Factory) {
	s.mu.Lock()
	s.cfg = cfg
	s.factory = f
	s.mu.Unlock()
	s.sessions.UpdateConfig(cfg.Sessions)
}

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Server) hooks() *hooks.Factory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.factory
}

func (s *Server) newPage() *view.ProviderPage {
	var obs view.PageObserver
	if s.metrics != nil {
		obs = s.metrics
	}
	return view.NewProviderPage(s.hooks(), s.sink, obs)
}

// authMiddleware returns a middleware that checks for a valid API key.
// Probes, metrics and the static dashboard are excluded.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health", "/ready", "/metrics", "/", "/dashboard":
			next.ServeHTTP(w, r)
			return
		}

		cc := s.config().Console
		if !cc.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || !validKey(cc, strings.TrimPrefix(header, "Bearer ")) {
			writeError(w, http.StatusUnauthorized, "unauthorized: invalid or missing API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validKey(cc config.ConsoleConfig, key string) bool {
	if key == "" {
		return false
	}
	if cc.APIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cc.APIKeyHash), []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(cc.APIKey)) == 1
}

// Handler builds the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Provider page, per session
	r.HandleFunc("/api/page", s.pageHandler).Methods("GET")
	r.HandleFunc("/api/insights", s.insightsHandler).Methods("GET")
	r.HandleFunc("/api/insights", s.refreshInsights).Methods("POST")
	r.HandleFunc("/api/insights/trending", s.trendingInsights).Methods("GET")
	r.HandleFunc("/api/insights/{id:[0-9]+}/deactivate", s.deactivateInsight).Methods("POST")
	r.HandleFunc("/api/reports", s.listReports).Methods("GET")
	r.HandleFunc("/api/reports", s.createReport).Methods("POST")
	r.HandleFunc("/api/reports/compare", s.compareReports).Methods("POST")
	r.HandleFunc("/api/reports/{id:[0-9]+}", s.getReport).Methods("GET")
	r.HandleFunc("/api/reports/{id:[0-9]+}", s.deleteReport).Methods("DELETE")
	r.HandleFunc("/api/reports/{id:[0-9]+}/export/{format}", s.exportReport).Methods("GET")
	r.HandleFunc("/api/predictions", s.listPredictions).Methods("GET")
	r.HandleFunc("/api/predictions", s.createPrediction).Methods("POST")
	r.HandleFunc("/api/predictions/{id:[0-9]+}", s.getPrediction).Methods("GET")

	// Stateless backend views
	r.HandleFunc("/api/schedules", s.listSchedules).Methods("GET")
	r.HandleFunc("/api/schedules", s.createSchedule).Methods("POST")
	r.HandleFunc("/api/schedules/{id:[0-9]+}", s.updateSchedule).Methods("PUT")
	r.HandleFunc("/api/schedules/{id:[0-9]+}", s.deleteSchedule).Methods("DELETE")
	r.HandleFunc("/api/schedules/{id:[0-9]+}/toggle", s.toggleSchedule).Methods("PATCH")
	r.HandleFunc("/api/quality/low", s.lowQuality).Methods("GET")
	r.HandleFunc("/api/quality/{datasetId:[0-9]+}", s.latestQuality).Methods("GET")
	r.HandleFunc("/api/quality/{datasetId:[0-9]+}", s.assessQuality).Methods("POST")
	r.HandleFunc("/api/admin/stats", s.adminStats).Methods("GET")
	r.HandleFunc("/api/whoami", s.whoami).Methods("GET")

	// Server status & config
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.HandleFunc("/config", s.configHandler).Methods("GET")

	// Health & readiness
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/ready", s.readyHandler).Methods("GET")

	// Prometheus metrics
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.HandleFunc("/", s.dashboardHandler).Methods("GET")
	r.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")

	// Wrap with security headers, then auth middleware
	return s.securityHeaders(s.authMiddleware(r))
}

// Start starts the HTTP server in the background.
func (s *Server) Start() error {
	cc := s.config().Console
	addr := fmt.Sprintf("%s:%d", cc.Bind, cc.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	if !cc.AuthEnabled() {
		slog.Warn("console API key not configured, endpoints are unauthenticated")
	}
	slog.Info("console listening", "addr", addr, "tls", cc.TLSEnabled())

	go func() {
		var err error
		if cc.TLSEnabled() {
			err = s.httpServer.ListenAndServeTLS(cc.TLSCert, cc.TLSKey)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("console server error", "err", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server and drops every session.
func (s *Server) Stop() error {
	defer s.sessions.Close()
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// --- Health Handlers ---

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
		return
	}
	allHealthy := s.healthCheck.OverallHealthy()

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"status": boolToStatus(allHealthy),
		"probes": s.healthCheck.GetAllStatuses(),
	})
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	// Ready if at least one probe is healthy or there are no probes
	if s.healthCheck == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	probes := s.healthCheck.GetAllStatuses()
	if len(probes) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	for name := range probes {
		if s.healthCheck.IsHealthy(name) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
	}

	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}

// --- Status & Config Handlers ---

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	cfg := s.config()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_mb":      float64(mem.Alloc) / 1024 / 1024,
		"backend":        cfg.API.BaseURL + cfg.API.BasePath,
		"sessions":       s.sessions.Stats(),
	})
}

func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	cfg := s.config()
	routes := s.hooks().Service().Routes()

	disabled := []string{}
	for _, rt := range routes.List() {
		if routes.IsDisabled(rt.Name) {
			disabled = append(disabled, rt.Name)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"api": cfg.API.Redacted(),
		"console": map[string]interface{}{
			"port":         cfg.Console.Port,
			"bind":         cfg.Console.Bind,
			"auth_enabled": cfg.Console.AuthEnabled(),
			"tls_enabled":  cfg.Console.TLSEnabled(),
		},
		"health_check": map[string]interface{}{
			"interval":          cfg.HealthCheck.Interval.String(),
			"failure_threshold": cfg.HealthCheck.FailureThreshold,
			"timeout":           cfg.HealthCheck.Timeout.String(),
			"probes":            cfg.HealthCheck.Probes,
		},
		"sessions": map[string]interface{}{
			"max_sessions": cfg.Sessions.MaxSessions,
			"idle_timeout": cfg.Sessions.IdleTimeout.String(),
			"max_lifetime": cfg.Sessions.MaxLifetime.String(),
		},
		"defaults":           cfg.Defaults,
		"disabled_endpoints": disabled,
	})
}

// securityHeaders adds security-related HTTP headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFailure answers with the status matching err and msg, the normalized
// hook message, or err's text when msg is empty.
func writeFailure(w http.ResponseWriter, err error, msg string) {
	if msg == "" {
		msg = err.Error()
	}
	writeError(w, failureStatus(err), msg)
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, router.ErrDisabled):
		return http.StatusForbidden
	case errors.Is(err, view.ErrInvalidDatasetID), errors.Is(err, view.ErrUnknownField), errors.Is(err, download.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, view.ErrDemoData):
		return http.StatusConflict
	}
	var te *transport.Error
	if errors.As(err, &te) && te.Err == nil && te.StatusCode >= 400 && te.StatusCode < 500 {
		return te.StatusCode
	}
	return http.StatusBadGateway
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func boolToStatus(b bool) string {
	if b {
		return "healthy"
	}
	return "unhealthy"
}
