package model

import "encoding/json"

// Schedule is a recurring analysis definition.
type Schedule struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name,omitempty"`
	ReportType     ReportType      `json:"reportType,omitempty"`
	DatasetID      int64           `json:"datasetId,omitempty"`
	Frequency      string          `json:"frequency,omitempty"`
	CronExpression string          `json:"cronExpression,omitempty"`
	Parameters     json.RawMessage `json:"parameters,omitempty"`
	Active         bool            `json:"active"`
	NextRunAt      *Timestamp      `json:"nextRunAt,omitempty"`
	CreatedAt      *Timestamp      `json:"createdAt,omitempty"`
}

// ScheduleRequest creates or replaces a schedule.
type ScheduleRequest struct {
	Name           string         `json:"name"`
	ReportType     ReportType     `json:"reportType"`
	DatasetID      int64          `json:"datasetId"`
	Frequency      string         `json:"frequency"`
	CronExpression string         `json:"cronExpression,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
}
