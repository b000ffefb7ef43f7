// Package analytics wraps every analytics backend endpoint in one method.
// Each method issues exactly one request and hands the transport response
// back untouched; errors are not interpreted here.
package analytics

import (
	"context"
	"net/url"
	"strconv"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
)

// DefaultTrendingDays is the look-back window used when none is given.
const DefaultTrendingDays = 7

// DefaultLowQualityThreshold is the quality score below which a dataset is
// listed as low quality when no threshold is given.
const DefaultLowQualityThreshold = 80.0

// Caller performs a single transport request. *transport.Client satisfies it.
type Caller interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Service exposes the analytics API.
type Service struct {
	caller Caller
	routes *router.Router
}

// New creates a Service. A nil router uses the default route table.
func New(caller Caller, routes *router.Router) *Service {
	if routes == nil {
		routes = router.Default(nil)
	}
	return &Service{caller: caller, routes: routes}
}

// Routes returns the route table the service resolves endpoints against.
func (s *Service) Routes() *router.Router {
	return s.routes
}

func (s *Service) call(ctx context.Context, name string, query url.Values, body any, args ...any) (*transport.Response, error) {
	rt, err := s.routes.Resolve(name)
	if err != nil {
		return nil, err
	}
	path, err := rt.Path(args...)
	if err != nil {
		return nil, err
	}
	return s.caller.Do(ctx, transport.Request{
		Endpoint: name,
		Method:   rt.Method,
		Path:     path,
		Query:    query,
		Body:     body,
	})
}

// pageQuery adds page and size to q, omitting zero values.
func pageQuery(q url.Values, p model.PageParams) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	return q
}

func periodQuery(q url.Values, p model.Period) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if p.Start != "" {
		q.Set("startDate", p.Start)
	}
	if p.End != "" {
		q.Set("endDate", p.End)
	}
	return q
}

// AdminStats fetches aggregate analytics statistics. Requires an admin token.
func (s *Service) AdminStats(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.AdminStats, nil, nil)
}
