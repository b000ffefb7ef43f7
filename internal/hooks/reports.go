package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

// Reports lists the caller's reports.
func (f *Factory) Reports(opts ...fetch.Option) *fetch.Query[[]model.Report] {
	return fetch.NewQuery[[]model.Report]("reports", f.svc.MyReports, f.opts(opts)...)
}

// Report fetches one report. It is disabled when id is zero.
func (f *Factory) Report(id int64, opts ...fetch.Option) *fetch.Query[model.Report] {
	opts = append(opts, fetch.WithEnabled(id > 0))
	return fetch.NewQuery[model.Report]("report", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.Report(ctx, id)
	}, f.opts(opts)...)
}

func (f *Factory) CreateReport(opts ...fetch.Option) *fetch.Mutation[model.CreateReportRequest, model.Report] {
	return fetch.NewMutation[model.CreateReportRequest, model.Report]("create report", f.svc.CreateReport, f.opts(opts)...)
}

func (f *Factory) DeleteReport(opts ...fetch.Option) *fetch.Mutation[int64, struct{}] {
	return fetch.NewAction("delete report", f.svc.DeleteReport, f.opts(opts)...)
}

// CompareReports compares a set of reports.
func (f *Factory) CompareReports(opts ...fetch.Option) *fetch.Mutation[[]int64, json.RawMessage] {
	return fetch.NewMutation[[]int64, json.RawMessage]("compare reports", f.svc.CompareReports, f.opts(opts)...)
}

// ExportRequest selects a report and the rendition to download.
type ExportRequest struct {
	ReportID int64
	Format   model.ExportFormat
}

// Export is a saved report export.
type Export struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
	// Data is kept for callers that stream the file themselves.
	Data []byte `json:"-"`
}

// Exporter downloads report exports into a sink. Each Export call issues
// exactly one request.
type Exporter struct {
	*fetch.Mutation[ExportRequest, Export]
}

// DownloadObserver is told about completed downloads.
type DownloadObserver interface {
	Downloaded(format string, bytes int)
}

// Exporter creates an export hook saving into sink. obs may be nil.
func (f *Factory) Exporter(sink download.Sink, obs DownloadObserver, opts ...fetch.Option) *Exporter {
	m := fetch.NewMutationFunc("export report", func(ctx context.Context, req ExportRequest) (Export, error) {
		name, err := download.Filename(req.ReportID, req.Format)
		if err != nil {
			return Export{}, err
		}
		resp, err := f.svc.ExportReport(ctx, req.ReportID, req.Format)
		if err != nil {
			slog.Error("export failed", "report_id", req.ReportID, "format", req.Format, "error", err)
			return Export{}, err
		}
		path, err := sink.Save(name, resp.Body)
		if err != nil {
			return Export{}, fmt.Errorf("saving export: %w", err)
		}
		if obs != nil {
			obs.Downloaded(string(req.Format), len(resp.Body))
		}
		return Export{Path: path, Name: name, Format: string(req.Format), Bytes: len(resp.Body), Data: resp.Body}, nil
	}, f.opts(opts)...)
	return &Exporter{Mutation: m}
}

func (e *Exporter) ExportPDF(ctx context.Context, reportID int64) (Export, error) {
	return e.Mutate(ctx, ExportRequest{ReportID: reportID, Format: model.ExportPDF})
}

func (e *Exporter) ExportExcel(ctx context.Context, reportID int64) (Export, error) {
	return e.Mutate(ctx, ExportRequest{ReportID: reportID, Format: model.ExportExcel})
}

func (e *Exporter) ExportCSV(ctx context.Context, reportID int64) (Export, error) {
	return e.Mutate(ctx, ExportRequest{ReportID: reportID, Format: model.ExportCSV})
}

// Predictions lists the caller's predictions.
func (f *Factory) Predictions(opts ...fetch.Option) *fetch.Query[[]model.Prediction] {
	return fetch.NewQuery[[]model.Prediction]("predictions", f.svc.MyPredictions, f.opts(opts)...)
}

func (f *Factory) Prediction(id int64, opts ...fetch.Option) *fetch.Query[model.Prediction] {
	opts = append(opts, fetch.WithEnabled(id > 0))
	return fetch.NewQuery[model.Prediction]("prediction", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.Prediction(ctx, id)
	}, f.opts(opts)...)
}

func (f *Factory) CreatePrediction(opts ...fetch.Option) *fetch.Mutation[model.CreatePredictionRequest, model.Prediction] {
	return fetch.NewMutation[model.CreatePredictionRequest, model.Prediction]("create prediction", f.svc.CreatePrediction, f.opts(opts)...)
}

// Benchmarks fetches the performance benchmarks of a dataset.
func (f *Factory) Benchmarks(datasetID int64, opts ...fetch.Option) *fetch.Query[json.RawMessage] {
	opts = append(opts, fetch.WithEnabled(datasetID > 0))
	return fetch.NewQuery[json.RawMessage]("benchmarks", func(ctx context.Context) (*transport.Response, error) {
		return f.svc.PerformanceBenchmarks(ctx, datasetID)
	}, f.opts(opts)...)
}

// AdminStats fetches aggregate statistics. Admin only.
func (f *Factory) AdminStats(opts ...fetch.Option) *fetch.Query[json.RawMessage] {
	return fetch.NewQuery[json.RawMessage]("analytics statistics", f.svc.AdminStats, f.opts(opts)...)
}
