package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evmarket/analytics-console/internal/analytics"
	"github.com/evmarket/analytics-console/internal/auth"
	"github.com/evmarket/analytics-console/internal/config"
	"github.com/evmarket/analytics-console/internal/console"
	"github.com/evmarket/analytics-console/internal/health"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/metrics"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/session"
	"github.com/evmarket/analytics-console/internal/transport"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/analytics.yaml", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("analytics console starting...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("configuration loaded", "path", *configPath, "backend", cfg.API.BaseURL+cfg.API.BasePath)

	// Initialize components
	m := metrics.New()
	tokens := auth.NewTokenSource(cfg.API.Token)
	client := transport.New(transport.Options{
		BaseURL:   cfg.API.BaseURL,
		BasePath:  cfg.API.BasePath,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		Tokens:    tokens,
		Observer:  m,
	}, nil)
	routes := router.Default(cfg.API.DisabledEndpoints)
	svc := analytics.New(client, routes)
	factory := hooks.New(svc, listDefaults(cfg.Defaults), m)

	hc := health.NewChecker(client, m, cfg.HealthCheck)
	hc.Start()

	srv := console.NewServer(cfg, factory, hc, m, tokens)
	srv.SetGatherer(prometheus.DefaultGatherer)

	// Start periodic session stats reporting to Prometheus
	srv.Sessions().StartStatsLoop(5*time.Second, func(s session.Stats) {
		m.SetActiveSessions(s.Active)
	})

	if err := srv.Start(); err != nil {
		slog.Error("failed to start console", "err", err)
		os.Exit(1)
	}

	// Set up config hot-reload
	configWatcher, err := config.NewWatcher(*configPath, func(newCfg *config.Config) {
		slog.Info("reloading configuration...")
		if newCfg.API.BaseURL != cfg.API.BaseURL || newCfg.API.BasePath != cfg.API.BasePath {
			slog.Warn("backend address changed, restart to apply", "backend", newCfg.API.BaseURL+newCfg.API.BasePath)
		}
		tokens.Set(newCfg.API.Token)
		routes.Reload(newCfg.API.DisabledEndpoints)
		hc.SetProbes(newCfg.HealthCheck.Probes)
		srv.Reload(newCfg, hooks.New(svc, listDefaults(newCfg.Defaults), m))
	})
	if err != nil {
		slog.Warn("config hot-reload not available", "err", err)
	}

	slog.Info("analytics console ready",
		"bind", cfg.Console.Bind,
		"port", cfg.Console.Port,
		"probes", len(cfg.HealthCheck.Probes))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down...", "signal", sig)

	done := make(chan struct{})
	go func() {
		if configWatcher != nil {
			configWatcher.Stop()
		}
		srv.Stop()
		hc.Stop()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("analytics console stopped")
	case <-time.After(shutdownTimeout):
		slog.Error("shutdown timed out, forcing exit", "timeout", shutdownTimeout)
		os.Exit(1)
	}
}

func listDefaults(d config.ListDefaults) hooks.Defaults {
	return hooks.Defaults{
		PageSize:            d.PageSize,
		PeriodPageSize:      d.PeriodPageSize,
		TrendingDays:        d.TrendingDays,
		LowQualityThreshold: d.LowQualityThreshold,
	}
}
