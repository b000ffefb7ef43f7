package analytics

import (
	"context"
	"fmt"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/router"
	"github.com/evmarket/analytics-console/internal/transport"
)

func (s *Service) CreateReport(ctx context.Context, req model.CreateReportRequest) (*transport.Response, error) {
	return s.call(ctx, router.ReportsCreate, nil, req)
}

func (s *Service) MyReports(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.ReportsMine, nil, nil)
}

func (s *Service) Report(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsGet, nil, nil, id)
}

func (s *Service) DeleteReport(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsDelete, nil, nil, id)
}

// ExportReportPDF downloads the PDF rendition of a report. The response body
// holds the raw file.
func (s *Service) ExportReportPDF(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsExportPDF, nil, nil, id)
}

func (s *Service) ExportReportExcel(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsExportExcel, nil, nil, id)
}

func (s *Service) ExportReportCSV(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsExportCSV, nil, nil, id)
}

// ExportReport dispatches to the export endpoint of the given format.
func (s *Service) ExportReport(ctx context.Context, id int64, format model.ExportFormat) (*transport.Response, error) {
	switch format {
	case model.ExportPDF:
		return s.ExportReportPDF(ctx, id)
	case model.ExportExcel:
		return s.ExportReportExcel(ctx, id)
	case model.ExportCSV:
		return s.ExportReportCSV(ctx, id)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// CompareReports compares two or more reports side by side.
func (s *Service) CompareReports(ctx context.Context, ids []int64) (*transport.Response, error) {
	return s.call(ctx, router.ReportsCompare, nil, model.CompareRequest{ReportIDs: ids})
}

func (s *Service) CreateDashboard(ctx context.Context, req model.DashboardRequest) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsCreate, nil, req)
}

func (s *Service) UpdateDashboard(ctx context.Context, id int64, req model.DashboardRequest) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsUpdate, nil, req, id)
}

func (s *Service) MyDashboards(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsMine, nil, nil)
}

func (s *Service) PublicDashboards(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsPublic, nil, nil)
}

func (s *Service) Dashboard(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsGet, nil, nil, id)
}

func (s *Service) DeleteDashboard(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.DashboardsDelete, nil, nil, id)
}

func (s *Service) CreatePrediction(ctx context.Context, req model.CreatePredictionRequest) (*transport.Response, error) {
	return s.call(ctx, router.PredictionsCreate, nil, req)
}

func (s *Service) MyPredictions(ctx context.Context) (*transport.Response, error) {
	return s.call(ctx, router.PredictionsMine, nil, nil)
}

func (s *Service) Prediction(ctx context.Context, id int64) (*transport.Response, error) {
	return s.call(ctx, router.PredictionsGet, nil, nil, id)
}
