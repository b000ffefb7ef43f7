package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://market.example.com
  base_path: /analytics/api
  token: abc
  timeout: 10s
  download_dir: /tmp/exports

console:
  port: 9000
  bind: 0.0.0.0
  api_key: console-key

health_check:
  interval: 15s
  failure_threshold: 5
  probes:
    reports: /reports/my-reports

defaults:
  page_size: 25
  trending_days: 14
  low_quality_threshold: 70
`
	path := writeTemp(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://market.example.com" {
		t.Errorf("expected base url, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.API.Timeout)
	}
	if cfg.API.DownloadDir != "/tmp/exports" {
		t.Errorf("expected download dir /tmp/exports, got %s", cfg.API.DownloadDir)
	}
	if cfg.Console.Port != 9000 {
		t.Errorf("expected console port 9000, got %d", cfg.Console.Port)
	}
	if !cfg.Console.AuthEnabled() {
		t.Error("expected console auth to be enabled")
	}
	if cfg.HealthCheck.FailureThreshold != 5 {
		t.Errorf("expected failure threshold 5, got %d", cfg.HealthCheck.FailureThreshold)
	}
	if cfg.HealthCheck.Probes["reports"] != "/reports/my-reports" {
		t.Errorf("unexpected probes: %v", cfg.HealthCheck.Probes)
	}
	if cfg.Defaults.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.Defaults.PageSize)
	}
	if cfg.Defaults.TrendingDays != 14 {
		t.Errorf("expected trending days 14, got %d", cfg.Defaults.TrendingDays)
	}
	if cfg.Defaults.LowQualityThreshold != 70 {
		t.Errorf("expected threshold 70, got %v", cfg.Defaults.LowQualityThreshold)
	}
}

func TestLoadEnvSubstitution(t *testing.T) {
	os.Setenv("TEST_ANALYTICS_TOKEN", "secret123")
	defer os.Unsetenv("TEST_ANALYTICS_TOKEN")

	yaml := `
api:
  base_url: http://localhost:8080
  token: ${TEST_ANALYTICS_TOKEN}
`
	path := writeTemp(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.Token != "secret123" {
		t.Errorf("expected token secret123, got %s", cfg.API.Token)
	}
	if cfg.API.Redacted().Token != "***REDACTED***" {
		t.Errorf("expected redacted token, got %s", cfg.API.Redacted().Token)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing base url",
			yaml: `
api:
  token: abc
`,
		},
		{
			name: "unsupported scheme",
			yaml: `
api:
  base_url: ftp://example.com
`,
		},
		{
			name: "relative base path",
			yaml: `
api:
  base_url: http://localhost
  base_path: analytics/api
`,
		},
		{
			name: "both api key forms",
			yaml: `
api:
  base_url: http://localhost
console:
  api_key: a
  api_key_hash: b
`,
		},
		{
			name: "tls cert without key",
			yaml: `
api:
  base_url: http://localhost
console:
  tls_cert: /etc/cert.pem
`,
		},
		{
			name: "threshold out of range",
			yaml: `
api:
  base_url: http://localhost
defaults:
  low_quality_threshold: 120
`,
		},
		{
			name: "relative probe path",
			yaml: `
api:
  base_url: http://localhost
health_check:
  probes:
    insights: insights/active
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.yaml)
			_, err := Load(path)
			if err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	yaml := `
api:
  base_url: http://localhost:8080
`
	path := writeTemp(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BasePath != "/analytics/api" {
		t.Errorf("expected default base path, got %s", cfg.API.BasePath)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %v", cfg.API.Timeout)
	}
	if cfg.Console.Port != 8090 {
		t.Errorf("expected default console port 8090, got %d", cfg.Console.Port)
	}
	if cfg.Console.Bind != "127.0.0.1" {
		t.Errorf("expected default bind 127.0.0.1, got %s", cfg.Console.Bind)
	}
	if cfg.HealthCheck.Probes["insights"] != "/insights/active" {
		t.Errorf("expected default insights probe, got %v", cfg.HealthCheck.Probes)
	}
	if cfg.Defaults.TrendingDays != 7 {
		t.Errorf("expected default trending days 7, got %d", cfg.Defaults.TrendingDays)
	}
	if cfg.Defaults.LowQualityThreshold != 80.0 {
		t.Errorf("expected default threshold 80, got %v", cfg.Defaults.LowQualityThreshold)
	}
	if cfg.Sessions.MaxSessions != 100 {
		t.Errorf("expected default max sessions 100, got %d", cfg.Sessions.MaxSessions)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("http://backend:8080")
	if cfg.API.BaseURL != "http://backend:8080" {
		t.Errorf("unexpected base url %s", cfg.API.BaseURL)
	}
	if cfg.Defaults.PeriodPageSize != 50 {
		t.Errorf("expected period page size 50, got %d", cfg.Defaults.PeriodPageSize)
	}
}

func TestWatcherReload(t *testing.T) {
	path := writeTemp(t, "api:\n  base_url: http://localhost:8080\n  token: one\n")

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("api:\n  base_url: http://localhost:8080\n  token: two\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case c := <-reloaded:
		if c.API.Token != "two" {
			t.Errorf("expected reloaded token two, got %s", c.API.Token)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return path
}
