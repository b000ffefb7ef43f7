// Package hooks builds the concrete data hooks of the analytics console on
// top of the endpoint layer. Every constructor returns a fresh instance with
// its own state slot; nothing is shared between instances.
package hooks

import (
	"github.com/evmarket/analytics-console/internal/analytics"
	"github.com/evmarket/analytics-console/internal/fetch"
)

// Defaults are the list parameters used when a caller leaves them zero.
type Defaults struct {
	PageSize            int
	PeriodPageSize      int
	TrendingDays        int
	LowQualityThreshold float64
}

// Factory creates hooks bound to one analytics service.
type Factory struct {
	svc      *analytics.Service
	defaults Defaults
	stale    fetch.StaleObserver
}

// New creates a Factory. stale may be nil.
func New(svc *analytics.Service, defaults Defaults, stale fetch.StaleObserver) *Factory {
	if defaults.PageSize == 0 {
		defaults.PageSize = 20
	}
	if defaults.PeriodPageSize == 0 {
		defaults.PeriodPageSize = 50
	}
	if defaults.TrendingDays == 0 {
		defaults.TrendingDays = analytics.DefaultTrendingDays
	}
	if defaults.LowQualityThreshold == 0 {
		defaults.LowQualityThreshold = analytics.DefaultLowQualityThreshold
	}
	return &Factory{svc: svc, defaults: defaults, stale: stale}
}

// Service returns the underlying endpoint layer.
func (f *Factory) Service() *analytics.Service {
	return f.svc
}

// Defaults returns the effective list defaults.
func (f *Factory) Defaults() Defaults {
	return f.defaults
}

func (f *Factory) opts(extra []fetch.Option) []fetch.Option {
	if f.stale == nil {
		return extra
	}
	return append([]fetch.Option{fetch.WithStaleObserver(f.stale)}, extra...)
}
