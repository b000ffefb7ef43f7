package model

// Severity ranks how urgent an insight is.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Insight is a generated or manually created observation about a dataset.
type Insight struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	InsightType string     `json:"insightType"`
	Severity    Severity   `json:"severity"`
	DatasetID   *int64     `json:"datasetId,omitempty"`
	Active      bool       `json:"active"`
	GeneratedAt Timestamp  `json:"generatedAt"`
	ValidUntil  *Timestamp `json:"validUntil,omitempty"`
}

// CreateInsightRequest is the body of the manual insight endpoint.
type CreateInsightRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	InsightType string     `json:"insightType"`
	Severity    Severity   `json:"severity"`
	Category    string     `json:"category,omitempty"`
	DatasetID   *int64     `json:"datasetId,omitempty"`
	ValidUntil  *Timestamp `json:"validUntil,omitempty"`
}

// TrendingParams selects the time window and page of trending insights.
type TrendingParams struct {
	Days int
	PageParams
}
