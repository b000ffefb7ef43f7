package view

import (
	"time"

	"github.com/evmarket/analytics-console/internal/model"
)

// MockInsights is the demo set shown on the provider page when the live
// insights call fails or comes back empty. Times are relative to now.
func MockInsights(now time.Time) []model.Insight {
	day := 24 * time.Hour
	ts := func(d time.Duration) model.Timestamp { return model.NewTimestamp(now.Add(d)) }
	ptr := func(t model.Timestamp) *model.Timestamp { return &t }
	dataset := func(id int64) *int64 { return &id }

	return []model.Insight{
		{
			ID:          101,
			Title:       "Dataset Download Spike",
			Description: "Your dataset #5 experienced 300% increase in downloads this week. Consider updating pricing or adding premium features.",
			InsightType: "TREND",
			Severity:    model.SeverityHigh,
			DatasetID:   dataset(5),
			Active:      true,
			GeneratedAt: ts(-1 * day),
			ValidUntil:  ptr(ts(14 * day)),
		},
		{
			ID:          102,
			Title:       "Data Quality Improvement Needed",
			Description: "Dataset #3 received low quality ratings (avg 2.3/5). Review data completeness and accuracy.",
			InsightType: "ALERT",
			Severity:    model.SeverityMedium,
			DatasetID:   dataset(3),
			Active:      true,
			GeneratedAt: ts(-2 * day),
			ValidUntil:  ptr(ts(7 * day)),
		},
		{
			ID:          103,
			Title:       "Revenue Milestone Reached",
			Description: "Congratulations! Your datasets generated $5,000 in revenue this month, achieving 125% of target.",
			InsightType: "SUCCESS",
			Severity:    model.SeverityLow,
			Active:      true,
			GeneratedAt: ts(-12 * time.Hour),
		},
		{
			ID:          104,
			Title:       "Recommended Dataset Update",
			Description: "Dataset #7 has not been updated in 90 days. Fresh data could increase consumer interest by 40%.",
			InsightType: "RECOMMENDATION",
			Severity:    model.SeverityMedium,
			DatasetID:   dataset(7),
			Active:      true,
			GeneratedAt: ts(-5 * day),
			ValidUntil:  ptr(ts(30 * day)),
		},
	}
}
