package analytics

import (
	"context"
	"net/url"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
)

func (s *Service) RecordMetric(ctx context.Context, m model.Metric) (*transport.Response, error) {
	return s.call(ctx, router.MetricsRecord, nil, m)
}

func (s *Service) RecordMetrics(ctx context.Context, batch []model.Metric) (*transport.Response, error) {
	return s.call(ctx, router.MetricsBatchRecord, nil, batch)
}

// MetricsByEntity lists a page of metrics recorded for one entity,
// optionally narrowed to a metric type.
func (s *Service) MetricsByEntity(ctx context.Context, entityType string, entityID int64, metricType string, p model.PageParams) (*transport.Response, error) {
	q := url.Values{}
	if metricType != "" {
		q.Set("metricType", metricType)
	}
	return s.call(ctx, router.MetricsByEntity, pageQuery(q, p), nil, entityType, entityID)
}

// MetricsByPeriod lists a page of metrics of one entity inside a date window.
func (s *Service) MetricsByPeriod(ctx context.Context, entityType string, entityID int64, pq model.PeriodQuery) (*transport.Response, error) {
	q := periodQuery(nil, pq.Period)
	if pq.MetricType != "" {
		q.Set("metricType", pq.MetricType)
	}
	if pq.AggregationPeriod != "" {
		q.Set("aggregationPeriod", pq.AggregationPeriod)
	}
	return s.call(ctx, router.MetricsByPeriod, pageQuery(q, pq.PageParams), nil, entityType, entityID)
}

func (s *Service) AverageMetric(ctx context.Context, entityType, metricName string, period model.Period) (*transport.Response, error) {
	return s.call(ctx, router.MetricsAverage, periodQuery(nil, period), nil, entityType, metricName)
}

func (s *Service) MetricsSummary(ctx context.Context, entityType string, entityID int64, period model.Period) (*transport.Response, error) {
	return s.call(ctx, router.MetricsSummary, periodQuery(nil, period), nil, entityType, entityID)
}

func (s *Service) MetricsByType(ctx context.Context, metricType string, p model.PageParams) (*transport.Response, error) {
	return s.call(ctx, router.MetricsByType, pageQuery(nil, p), nil, metricType)
}
