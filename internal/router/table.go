package router

import "net/http"

// Endpoint names of the analytics API.
const (
	ReportsCreate      = "reports.create"
	ReportsMine        = "reports.mine"
	ReportsGet         = "reports.get"
	ReportsDelete      = "reports.delete"
	ReportsExportPDF   = "reports.export.pdf"
	ReportsExportExcel = "reports.export.excel"
	ReportsExportCSV   = "reports.export.csv"
	ReportsCompare     = "reports.compare"

	DashboardsCreate = "dashboards.create"
	DashboardsUpdate = "dashboards.update"
	DashboardsMine   = "dashboards.mine"
	DashboardsPublic = "dashboards.public"
	DashboardsGet    = "dashboards.get"
	DashboardsDelete = "dashboards.delete"

	PredictionsCreate = "predictions.create"
	PredictionsMine   = "predictions.mine"
	PredictionsGet    = "predictions.get"

	InsightsActive     = "insights.active"
	InsightsByDataset  = "insights.by-dataset"
	InsightsBySeverity = "insights.by-severity"
	InsightsByCategory = "insights.by-category"
	InsightsByType     = "insights.by-type"
	InsightsGet        = "insights.get"
	InsightsSummary    = "insights.summary"
	InsightsCreate     = "insights.create"
	InsightsGenerate   = "insights.generate"
	InsightsActivate   = "insights.activate"
	InsightsDeactivate = "insights.deactivate"
	InsightsDelete     = "insights.delete"
	InsightsTrending   = "insights.trending"

	MetricsRecord      = "metrics.record"
	MetricsBatchRecord = "metrics.batch-record"
	MetricsByEntity    = "metrics.by-entity"
	MetricsByPeriod    = "metrics.by-period"
	MetricsAverage     = "metrics.average"
	MetricsSummary     = "metrics.summary"
	MetricsByType      = "metrics.by-type"

	SchedulesCreate = "schedules.create"
	SchedulesMine   = "schedules.mine"
	SchedulesUpdate = "schedules.update"
	SchedulesToggle = "schedules.toggle"
	SchedulesDelete = "schedules.delete"

	Benchmarks = "benchmarks.get"

	QualityAssess = "quality.assess"
	QualityLatest = "quality.latest"
	QualityLow    = "quality.low"

	AdminStats = "admin.stats"
)

// AnalyticsRoutes is the route table of the analytics API, relative to its base path.
var AnalyticsRoutes = []Route{
	{ReportsCreate, http.MethodPost, "/reports"},
	{ReportsMine, http.MethodGet, "/reports/my-reports"},
	{ReportsGet, http.MethodGet, "/reports/{id}"},
	{ReportsDelete, http.MethodDelete, "/reports/{id}"},
	{ReportsExportPDF, http.MethodGet, "/advanced/reports/{id}/export/pdf"},
	{ReportsExportExcel, http.MethodGet, "/advanced/reports/{id}/export/excel"},
	{ReportsExportCSV, http.MethodGet, "/advanced/reports/{id}/export/csv"},
	{ReportsCompare, http.MethodPost, "/advanced/reports/compare"},

	{DashboardsCreate, http.MethodPost, "/dashboards"},
	{DashboardsUpdate, http.MethodPut, "/dashboards/{id}"},
	{DashboardsMine, http.MethodGet, "/dashboards/my-dashboards"},
	{DashboardsPublic, http.MethodGet, "/dashboards/public"},
	{DashboardsGet, http.MethodGet, "/dashboards/{id}"},
	{DashboardsDelete, http.MethodDelete, "/dashboards/{id}"},

	{PredictionsCreate, http.MethodPost, "/predictions"},
	{PredictionsMine, http.MethodGet, "/predictions/my-predictions"},
	{PredictionsGet, http.MethodGet, "/predictions/{id}"},

	{InsightsActive, http.MethodGet, "/insights/active"},
	{InsightsByDataset, http.MethodGet, "/insights/dataset/{datasetId}"},
	{InsightsBySeverity, http.MethodGet, "/insights/severity/{severity}"},
	{InsightsByCategory, http.MethodGet, "/insights/category/{category}"},
	{InsightsByType, http.MethodGet, "/insights/type/{type}"},
	{InsightsGet, http.MethodGet, "/insights/{id}"},
	{InsightsSummary, http.MethodGet, "/insights/summary"},
	{InsightsCreate, http.MethodPost, "/insights/create"},
	{InsightsGenerate, http.MethodPost, "/insights/generate-auto/{reportId}"},
	{InsightsActivate, http.MethodPost, "/insights/{id}/activate"},
	{InsightsDeactivate, http.MethodPost, "/insights/{id}/deactivate"},
	{InsightsDelete, http.MethodDelete, "/insights/{id}"},
	{InsightsTrending, http.MethodGet, "/advanced/insights/trending"},

	{MetricsRecord, http.MethodPost, "/metrics/record"},
	{MetricsBatchRecord, http.MethodPost, "/metrics/batch-record"},
	{MetricsByEntity, http.MethodGet, "/metrics/entity/{entityType}/{entityId}"},
	{MetricsByPeriod, http.MethodGet, "/metrics/period/{entityType}/{entityId}"},
	{MetricsAverage, http.MethodGet, "/metrics/average/{entityType}/{metricName}"},
	{MetricsSummary, http.MethodGet, "/metrics/summary/{entityType}/{entityId}"},
	{MetricsByType, http.MethodGet, "/metrics/type/{metricType}"},

	{SchedulesCreate, http.MethodPost, "/advanced/schedule"},
	{SchedulesMine, http.MethodGet, "/advanced/schedule/my-schedules"},
	{SchedulesUpdate, http.MethodPut, "/advanced/schedule/{id}"},
	{SchedulesToggle, http.MethodPatch, "/advanced/schedule/{id}/toggle"},
	{SchedulesDelete, http.MethodDelete, "/advanced/schedule/{id}"},

	{Benchmarks, http.MethodGet, "/advanced/benchmarks/{datasetId}"},

	{QualityAssess, http.MethodPost, "/data-quality/assess/{datasetId}"},
	{QualityLatest, http.MethodGet, "/data-quality/dataset/{datasetId}/latest"},
	{QualityLow, http.MethodGet, "/data-quality/low-quality"},

	{AdminStats, http.MethodGet, "/admin/analytics/stats"},
}
