package hooks

import (
	"context"
	"encoding/json"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

// MetricRecorder records single metrics and batches.
type MetricRecorder struct {
	Record *fetch.Mutation[model.Metric, model.Metric]
	Batch  *fetch.Mutation[[]model.Metric, []model.Metric]
}

func (f *Factory) MetricRecorder(opts ...fetch.Option) *MetricRecorder {
	o := f.opts(opts)
	return &MetricRecorder{
		Record: fetch.NewMutation[model.Metric, model.Metric]("record metric", f.svc.RecordMetric, o...),
		Batch:  fetch.NewMutation[[]model.Metric, []model.Metric]("record metrics", f.svc.RecordMetrics, o...),
	}
}

// EntityQuery selects the metrics of one entity.
type EntityQuery struct {
	EntityType string
	EntityID   int64
	MetricType string
	model.PageParams
}

// MetricsByEntity lists a page of an entity's metrics. It is disabled until
// both entity type and id are set.
func (f *Factory) MetricsByEntity(q EntityQuery, opts ...fetch.Option) *fetch.Query[[]model.Metric] {
	if q.Size == 0 {
		q.Size = f.defaults.PageSize
	}
	opts = append(opts, fetch.WithEnabled(q.EntityType != "" && q.EntityID > 0))
	return fetch.NewPagedQuery[model.Metric]("metrics", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.MetricsByEntity(ctx, q.EntityType, q.EntityID, q.MetricType, q.PageParams)
	}, f.opts(opts)...)
}

// MetricsByPeriod lists a page of an entity's metrics inside a window. It is
// disabled until both ends of the window are set.
func (f *Factory) MetricsByPeriod(entityType string, entityID int64, pq model.PeriodQuery, opts ...fetch.Option) *fetch.Query[[]model.Metric] {
	if pq.Size == 0 {
		pq.Size = f.defaults.PeriodPageSize
	}
	enabled := entityType != "" && entityID > 0 && pq.Start != "" && pq.End != ""
	opts = append(opts, fetch.WithEnabled(enabled))
	return fetch.NewPagedQuery[model.Metric]("metrics", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.MetricsByPeriod(ctx, entityType, entityID, pq)
	}, f.opts(opts)...)
}

// AverageMetric averages one metric of an entity type over a window.
func (f *Factory) AverageMetric(entityType, metricName string, period model.Period, opts ...fetch.Option) *fetch.Query[json.RawMessage] {
	enabled := entityType != "" && metricName != "" && period.Start != "" && period.End != ""
	opts = append(opts, fetch.WithEnabled(enabled))
	return fetch.NewQuery[json.RawMessage]("average", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.AverageMetric(ctx, entityType, metricName, period)
	}, f.opts(opts)...)
}

func (f *Factory) MetricsSummary(entityType string, entityID int64, period model.Period, opts ...fetch.Option) *fetch.Query[json.RawMessage] {
	opts = append(opts, fetch.WithEnabled(entityType != "" && entityID > 0))
	return fetch.NewQuery[json.RawMessage]("summary", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.MetricsSummary(ctx, entityType, entityID, period)
	}, f.opts(opts)...)
}

func (f *Factory) MetricsByType(metricType string, p model.PageParams, opts ...fetch.Option) *fetch.Query[[]model.Metric] {
	if p.Size == 0 {
		p.Size = f.defaults.PageSize
	}
	opts = append(opts, fetch.WithEnabled(metricType != ""))
	return fetch.NewPagedQuery[model.Metric]("metrics", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.MetricsByType(ctx, metricType, p)
	}, f.opts(opts)...)
}
