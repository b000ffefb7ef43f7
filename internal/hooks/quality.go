package hooks

import (
	"context"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

// QualityInput is the submission of a data quality assessment.
type QualityInput struct {
	DatasetID int64
	Metrics   model.DatasetQualityMetrics
}

func (f *Factory) AssessQuality(opts ...fetch.Option) *fetch.Mutation[QualityInput, model.QualityAssessment] {
	return fetch.NewMutation[QualityInput, model.QualityAssessment]("assess data quality", func(ctx context.Context, in QualityInput) (*transport.Response, error) {
		return f.svc.AssessQuality(ctx, in.DatasetID, in.Metrics)
	}, f.opts(opts)...)
}

func (f *Factory) LatestQuality(datasetID int64, opts ...fetch.Option) *fetch.Query[model.QualityAssessment] {
	opts = append(opts, fetch.WithEnabled(datasetID > 0))
	return fetch.NewQuery[model.QualityAssessment]("data quality", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.LatestQuality(ctx, datasetID)
	}, f.opts(opts)...)
}

// LowQuality lists assessments scoring below threshold, or below the
// default threshold when zero.
func (f *Factory) LowQuality(threshold float64, opts ...fetch.Option) *fetch.Query[[]model.QualityAssessment] {
	if threshold == 0 {
		threshold = f.defaults.LowQualityThreshold
	}
	return fetch.NewQuery[[]model.QualityAssessment]("low quality datasets", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.LowQualityDatasets(ctx, threshold)
	}, f.opts(opts)...)
}
