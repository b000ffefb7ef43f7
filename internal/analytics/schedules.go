package analytics

import (
	"context"
	"net/url"
	"strconv"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
)

func (s *Service) CreateSchedule(ctx context.Context, req model.ScheduleRequest) (*transport.Response, error) {
	return s.call(ctx, router.SchedulesCreate, nil, req)
}

func (s *Service) MySchedules(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.SchedulesMine, nil, nil)
}

func (s *Service) UpdateSchedule(ctx context.Context, id int64, req model.ScheduleRequest) (*transport.Response, error) {
	return s.call(ctx, router.SchedulesUpdate, nil, req, id)
}

// ToggleSchedule pauses an active schedule or resumes a paused one.
func (s *Service) ToggleSchedule(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.SchedulesToggle, nil, nil, id)
}

func (s *Service) DeleteSchedule(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.SchedulesDelete, nil, nil, id)
}

func (s *Service) PerformanceBenchmarks(ctx context.Context, datasetID int64) (*transport.Response, error) {
	return s.call(ctx, router.Benchmarks, nil, nil, datasetID)
}

func (s *Service) AssessQuality(ctx context.Context, datasetID int64, metrics model.DatasetQualityMetrics) (*transport.Response, error) {
	return s.call(ctx, router.QualityAssess, nil, metrics, datasetID)
}

// LatestQuality fetches the latest assessment of a dataset. The endpoint is public.
func (s *Service) LatestQuality(ctx context.Context, datasetID int64) (*transport.Response, error) {
	return s.call(ctx, router.QualityLatest, nil, nil, datasetID)
}

// LowQualityDatasets lists assessments scoring below threshold. A
// non-positive threshold uses DefaultLowQualityThreshold.
func (s *Service) LowQualityDatasets(ctx context.Context, threshold float64) (*transport.Response, error) {
	if threshold <= 0 {
		threshold = DefaultLowQualityThreshold
	}
	q := url.Values{"threshold": {strconv.FormatFloat(threshold, 'f', 1, 64)}}
	return s.call(ctx, router.QualityLow, q, nil)
}
