package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the analytics console and CLI.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Console     ConsoleConfig     `yaml:"console"`
	HealthCheck HealthCheckConfig `yaml:"health_check"`
	Sessions    SessionConfig     `yaml:"sessions"`
	Defaults    ListDefaults      `yaml:"defaults"`
}

// APIConfig describes how to reach the analytics backend.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	BasePath    string        `yaml:"base_path"`
	Token       string        `yaml:"token"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	DownloadDir string        `yaml:"download_dir"`

	// DisabledEndpoints lists route names that must not be called, for
	// example privileged operations on a non-admin deployment.
	DisabledEndpoints []string `yaml:"disabled_endpoints"`
}

// ConsoleConfig defines the bind address and credentials of the console server.
type ConsoleConfig struct {
	Port       int    `yaml:"port"`
	Bind       string `yaml:"bind"`
	APIKey     string `yaml:"api_key"`
	APIKeyHash string `yaml:"api_key_hash"`
	TLSCert    string `yaml:"tls_cert"`
	TLSKey     string `yaml:"tls_key"`
}

// HealthCheckConfig controls the background backend probes.
type HealthCheckConfig struct {
	Interval         time.Duration     `yaml:"interval"`
	FailureThreshold int               `yaml:"failure_threshold"`
	Timeout          time.Duration     `yaml:"timeout"`
	Probes           map[string]string `yaml:"probes"`
}

// SessionConfig bounds the per-browser page state kept by the console.
type SessionConfig struct {
	MaxSessions int           `yaml:"max_sessions"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
}

// ListDefaults holds the default query parameters used by list hooks.
type ListDefaults struct {
	PageSize            int     `yaml:"page_size"`
	PeriodPageSize      int     `yaml:"period_page_size"`
	TrendingDays        int     `yaml:"trending_days"`
	LowQualityThreshold float64 `yaml:"low_quality_threshold"`
}

// Redacted returns a copy of the APIConfig with the token masked.
func (a APIConfig) Redacted() APIConfig {
	c := a
	if c.Token != "" {
		c.Token = "***REDACTED***"
	}
	return c
}

// TLSEnabled returns true if both TLS cert and key paths are configured.
func (cc ConsoleConfig) TLSEnabled() bool {
	return cc.TLSCert != "" && cc.TLSKey != ""
}

// AuthEnabled reports whether the console requires a bearer key.
func (cc ConsoleConfig) AuthEnabled() bool {
	return cc.APIKey != "" || cc.APIKeyHash != ""
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		if val, ok := os.LookupEnv(string(varName)); ok {
			return []byte(val)
		}
		return match
	})
}

// Load reads and parses a YAML config file with env var substitution.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and defaults a YAML document.
func Parse(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// Default returns a configuration pointing at baseURL with every default applied.
func Default(baseURL string) *Config {
	cfg := &Config{API: APIConfig{BaseURL: baseURL}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/analytics/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "analytics-console"
	}
	if cfg.API.DownloadDir == "" {
		cfg.API.DownloadDir = "."
	}
	if cfg.Console.Port == 0 {
		cfg.Console.Port = 8090
	}
	if cfg.Console.Bind == "" {
		cfg.Console.Bind = "127.0.0.1"
	}
	if cfg.HealthCheck.Interval == 0 {
		cfg.HealthCheck.Interval = 30 * time.Second
	}
	if cfg.HealthCheck.FailureThreshold == 0 {
		cfg.HealthCheck.FailureThreshold = 3
	}
	if cfg.HealthCheck.Timeout == 0 {
		cfg.HealthCheck.Timeout = 5 * time.Second
	}
	if len(cfg.HealthCheck.Probes) == 0 {
		cfg.HealthCheck.Probes = map[string]string{"insights": "/insights/active"}
	}
	if cfg.Sessions.MaxSessions == 0 {
		cfg.Sessions.MaxSessions = 100
	}
	if cfg.Sessions.IdleTimeout == 0 {
		cfg.Sessions.IdleTimeout = 15 * time.Minute
	}
	if cfg.Sessions.MaxLifetime == 0 {
		cfg.Sessions.MaxLifetime = 8 * time.Hour
	}
	if cfg.Defaults.PageSize == 0 {
		cfg.Defaults.PageSize = 20
	}
	if cfg.Defaults.PeriodPageSize == 0 {
		cfg.Defaults.PeriodPageSize = 50
	}
	if cfg.Defaults.TrendingDays == 0 {
		cfg.Defaults.TrendingDays = 7
	}
	if cfg.Defaults.LowQualityThreshold == 0 {
		cfg.Defaults.LowQualityThreshold = 80.0
	}
}

func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: unsupported scheme %q (must be http or https)", u.Scheme)
	}
	if cfg.API.BasePath != "" && !strings.HasPrefix(cfg.API.BasePath, "/") {
		return fmt.Errorf("api.base_path must start with /")
	}
	if cfg.Console.APIKey != "" && cfg.Console.APIKeyHash != "" {
		return fmt.Errorf("console: set either api_key or api_key_hash, not both")
	}
	if (cfg.Console.TLSCert == "") != (cfg.Console.TLSKey == "") {
		return fmt.Errorf("console: tls_cert and tls_key must be set together")
	}
	if cfg.Defaults.LowQualityThreshold < 0 || cfg.Defaults.LowQualityThreshold > 100 {
		return fmt.Errorf("defaults.low_quality_threshold must be within [0, 100]")
	}
	for name, p := range cfg.HealthCheck.Probes {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("health_check probe %q: path must start with /", name)
		}
	}
	return nil
}

// Watcher watches a config file for changes and calls the callback with the new config.
type Watcher struct {
	path     string
	callback func(*Config)
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	stopCh   chan struct{}
}

// NewWatcher creates a new config file watcher.
func NewWatcher(path string, callback func(*Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching config file: %w", err)
	}

	cw := &Watcher{
		path:     path,
		callback: callback,
		watcher:  w,
		stopCh:   make(chan struct{}),
	}

	go cw.run()
	return cw, nil
}

func (cw *Watcher) run() {
	// Debounce timer to avoid rapid reloads
	var debounce *time.Timer
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					cw.reload()
				})
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[config] watcher error: %v", err)
		case <-cw.stopCh:
			return
		}
	}
}

func (cw *Watcher) reload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cfg, err := Load(cw.path)
	if err != nil {
		log.Printf("[config] hot-reload failed: %v", err)
		return
	}

	log.Printf("[config] configuration reloaded from %s", cw.path)
	cw.callback(cfg)
}

// Stop stops the config watcher.
func (cw *Watcher) Stop() error {
	close(cw.stopCh)
	return cw.watcher.Close()
}
