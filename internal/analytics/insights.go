package analytics

import (
	"context"
	"net/url"
	"strconv"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
)

// ActiveInsights lists the currently active insights. The endpoint is public.
func (s *Service) ActiveInsights(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.InsightsActive, nil, nil)
}

func (s *Service) InsightsByDataset(ctx context.Context, datasetID int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsByDataset, nil, nil, datasetID)
}

func (s *Service) InsightsBySeverity(ctx context.Context, severity model.Severity) (*transport.Response, error) {
	return s.call(ctx, router.InsightsBySeverity, nil, nil, severity)
}

func (s *Service) InsightsByCategory(ctx context.Context, category string) (*transport.Response, error) {
	return s.call(ctx, router.InsightsByCategory, nil, nil, category)
}

func (s *Service) InsightsByType(ctx context.Context, insightType string) (*transport.Response, error) {
	return s.call(ctx, router.InsightsByType, nil, nil, insightType)
}

func (s *Service) Insight(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsGet, nil, nil, id)
}

func (s *Service) InsightsSummary(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.InsightsSummary, nil, nil)
}

func (s *Service) CreateInsight(ctx context.Context, req model.CreateInsightRequest) (*transport.Response, error) {
	return s.call(ctx, router.InsightsCreate, nil, req)
}

// GenerateInsights asks the backend to derive insights from a completed report.
func (s *Service) GenerateInsights(ctx context.Context, reportID int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsGenerate, nil, nil, reportID)
}

func (s *Service) ActivateInsight(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsActivate, nil, nil, id)
}

func (s *Service) DeactivateInsight(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsDeactivate, nil, nil, id)
}

// DeleteInsight removes an insight. Requires an admin token.
func (s *Service) DeleteInsight(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.InsightsDelete, nil, nil, id)
}

// TrendingInsights lists a page of insights trending over the last p.Days days.
func (s *Service) TrendingInsights(ctx context.Context, p model.TrendingParams) (*transport.Response, error) {
	days := p.Days
	if days <= 0 {
		days = DefaultTrendingDays
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	return s.call(ctx, router.InsightsTrending, pageQuery(q, p.PageParams), nil)
}
