package hooks

import (
	"context"
	"encoding/json"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

// ActiveInsights lists the currently active insights.
func (f *Factory) ActiveInsights(opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	return fetch.NewQuery[[]model.Insight]("insights", f.svc.ActiveInsights, f.opts(opts)...)
}

func (f *Factory) InsightsByDataset(datasetID int64, opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	opts = append(opts, fetch.WithEnabled(datasetID > 0))
	return fetch.NewQuery[[]model.Insight]("insights", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.InsightsByDataset(ctx, datasetID)
	}, f.opts(opts)...)
}

func (f *Factory) InsightsBySeverity(severity model.Severity, opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	opts = append(opts, fetch.WithEnabled(severity != ""))
	return fetch.NewQuery[[]model.Insight]("insights", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.InsightsBySeverity(ctx, severity)
	}, f.opts(opts)...)
}

func (f *Factory) InsightsByCategory(category string, opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	opts = append(opts, fetch.WithEnabled(category != ""))
	return fetch.NewQuery[[]model.Insight]("insights", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.InsightsByCategory(ctx, category)
	}, f.opts(opts)...)
}

func (f *Factory) InsightsByType(insightType string, opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	opts = append(opts, fetch.WithEnabled(insightType != ""))
	return fetch.NewQuery[[]model.Insight]("insights", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.InsightsByType(ctx, insightType)
	}, f.opts(opts)...)
}

func (f *Factory) Insight(id int64, opts ...fetch.Option) *fetch.Query[model.Insight] {
	opts = append(opts, fetch.WithEnabled(id > 0))
	return fetch.NewQuery[model.Insight]("insight", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.Insight(ctx, id)
	}, f.opts(opts)...)
}

func (f *Factory) InsightsSummary(opts ...fetch.Option) *fetch.Query[json.RawMessage] {
	return fetch.NewQuery[json.RawMessage]("insights summary", f.svc.InsightsSummary, f.opts(opts)...)
}

// TrendingInsights lists a page of trending insights. Zero fields of p
// take the factory defaults.
func (f *Factory) TrendingInsights(p model.TrendingParams, opts ...fetch.Option) *fetch.Query[[]model.Insight] {
	if p.Days == 0 {
		p.Days = f.defaults.TrendingDays
	}
	if p.Size == 0 {
		p.Size = f.defaults.PageSize
	}
	return fetch.NewPagedQuery[model.Insight]("trending insights", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.TrendingInsights(ctx, p)
	}, f.opts(opts)...)
}

// InsightManagement groups the insight write operations.
type InsightManagement struct {
	Create     *fetch.Mutation[model.CreateInsightRequest, model.Insight]
	Generate   *fetch.Mutation[int64, []model.Insight]
	Activate   *fetch.Mutation[int64, struct{}]
	Deactivate *fetch.Mutation[int64, struct{}]
	Delete     *fetch.Mutation[int64, struct{}]
}

func (f *Factory) InsightManagement(opts ...fetch.Option) *InsightManagement {
	o := f.opts(opts)
	return &InsightManagement{
		Create:     fetch.NewMutation[model.CreateInsightRequest, model.Insight]("create insight", f.svc.CreateInsight, o...),
		Generate:   fetch.NewMutation[int64, []model.Insight]("generate insights", f.svc.GenerateInsights, o...),
		Activate:   fetch.NewAction("activate insight", f.svc.ActivateInsight, o...),
		Deactivate: fetch.NewAction("deactivate insight", f.svc.DeactivateInsight, o...),
		Delete:     fetch.NewAction("delete insight", f.svc.DeleteInsight, o...),
	}
}
