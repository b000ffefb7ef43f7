package model

import "encoding/json"

// ReportType is the analysis category of a report.
type ReportType string

const (
	ReportBatteryHealth      ReportType = "BATTERY_HEALTH"
	ReportEnergyConsumption  ReportType = "ENERGY_CONSUMPTION"
	ReportChargingBehavior   ReportType = "CHARGING_BEHAVIOR"
	ReportRangeAnalysis      ReportType = "RANGE_ANALYSIS"
	ReportPerformanceMetrics ReportType = "PERFORMANCE_METRICS"
)

// ReportTypes lists the report categories offered by the create form.
var ReportTypes = []ReportType{
	ReportBatteryHealth,
	ReportEnergyConsumption,
	ReportChargingBehavior,
	ReportRangeAnalysis,
	ReportPerformanceMetrics,
}

// Report is an analysis report owned by the backend.
type Report struct {
	ID          int64           `json:"id"`
	ReportType  ReportType      `json:"reportType"`
	DatasetID   int64           `json:"datasetId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      Status          `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	CreatedAt   Timestamp       `json:"createdAt"`
	UpdatedAt   *Timestamp      `json:"updatedAt,omitempty"`
	CompletedAt *Timestamp      `json:"completedAt,omitempty"`
}

// CreateReportRequest is the body of the report creation endpoint.
type CreateReportRequest struct {
	ReportType  ReportType     `json:"reportType"`
	DatasetID   int64          `json:"datasetId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompareRequest is the body of the report comparison endpoint.
type CompareRequest struct {
	ReportIDs []int64 `json:"reportIds"`
}

// ExportFormat selects the binary rendition of a report export.
type ExportFormat string

const (
	ExportPDF   ExportFormat = "pdf"
	ExportExcel ExportFormat = "excel"
	ExportCSV   ExportFormat = "csv"
)

// Extension returns the file extension used for downloaded exports.
func (f ExportFormat) Extension() string {
	switch f {
	case ExportExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// Valid reports whether f is one of the supported formats.
func (f ExportFormat) Valid() bool {
	return f == ExportPDF || f == ExportExcel || f == ExportCSV
}
