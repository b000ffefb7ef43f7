package model

import "encoding/json"

// QualityAssessment is the latest data quality scoring of a dataset.
type QualityAssessment struct {
	ID                int64           `json:"id"`
	DatasetID         int64           `json:"datasetId"`
	OverallScore      float64         `json:"overallScore"`
	CompletenessScore float64         `json:"completenessScore"`
	AccuracyScore     float64         `json:"accuracyScore"`
	ConsistencyScore  float64         `json:"consistencyScore"`
	TimelinessScore   float64         `json:"timelinessScore"`
	Issues            json.RawMessage `json:"issues,omitempty"`
	AssessedAt        *Timestamp      `json:"assessedAt,omitempty"`
}

// DatasetQualityMetrics are the raw counts submitted for an assessment.
type DatasetQualityMetrics struct {
	TotalRecords     int64 `json:"totalRecords"`
	MissingValues    int64 `json:"missingValues"`
	DuplicateRecords int64 `json:"duplicateRecords"`
	InvalidRecords   int64 `json:"invalidRecords"`
	OutdatedRecords  int64 `json:"outdatedRecords"`
}
