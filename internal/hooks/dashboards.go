package hooks

import (
	"context"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

func (f *Factory) MyDashboards(opts ...fetch.Option) *fetch.Query[[]model.Dashboard] {
	return fetch.NewQuery[[]model.Dashboard]("dashboards", f.svc.MyDashboards, f.opts(opts)...)
}

func (f *Factory) PublicDashboards(opts ...fetch.Option) *fetch.Query[[]model.Dashboard] {
	return fetch.NewQuery[[]model.Dashboard]("public dashboards", f.svc.PublicDashboards, f.opts(opts)...)
}

func (f *Factory) Dashboard(id int64, opts ...fetch.Option) *fetch.Query[model.Dashboard] {
	opts = append(opts, fetch.WithEnabled(id > 0))
	return fetch.NewQuery[model.Dashboard]("dashboard", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.Dashboard(ctx, id)
	}, f.opts(opts)...)
}

// DashboardUpdate replaces a dashboard definition.
type DashboardUpdate struct {
	ID      int64
	Request model.DashboardRequest
}

// DashboardManagement groups the dashboard write operations.
type DashboardManagement struct {
	Create *fetch.Mutation[model.DashboardRequest, model.Dashboard]
	Update *fetch.Mutation[DashboardUpdate, model.Dashboard]
	Delete *fetch.Mutation[int64, struct{}]
}

func (f *Factory) DashboardManagement(opts ...fetch.Option) *DashboardManagement {
	o := f.opts(opts)
	return &DashboardManagement{
		Create: fetch.NewMutation[model.DashboardRequest, model.Dashboard]("create dashboard", f.svc.CreateDashboard, o...),
		Update: fetch.NewMutation[DashboardUpdate, model.Dashboard]("update dashboard", func(ctx context.Context, u DashboardUpdate) (*transport.Response, error) {
			return f.svc.UpdateDashboard(ctx, u.ID, u.Request)
		}, o...),
		Delete: fetch.NewAction("delete dashboard", f.svc.DeleteDashboard, o...),
	}
}
