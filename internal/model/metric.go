package model

// Metric is a single recorded measurement about an entity.
type Metric struct {
	ID                int64      `json:"id,omitempty"`
	EntityType        string     `json:"entityType"`
	EntityID          int64      `json:"entityId"`
	MetricName        string     `json:"metricName"`
	MetricType        string     `json:"metricType,omitempty"`
	Value             float64    `json:"value"`
	Unit              string     `json:"unit,omitempty"`
	AggregationPeriod string     `json:"aggregationPeriod,omitempty"`
	Timestamp         *Timestamp `json:"timestamp,omitempty"`
}

// Period is an inclusive date window passed as startDate/endDate.
type Period struct {
	Start string
	End   string
}

// PeriodQuery narrows a by-period metrics listing.
type PeriodQuery struct {
	Period
	MetricType        string
	AggregationPeriod string
	PageParams
}
