package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/view"
)

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errUsage)
}

// failure carries the normalized hook message while keeping the cause
// reachable for errors.Is.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

func fetchQuery[T any](ctx context.Context, q *fetch.Query[T]) (T, error) {
	if err := q.Refetch(ctx); err != nil {
		var zero T
		return zero, &failure{msg: q.Err(), err: err}
	}
	return q.Data(), nil
}

func mutate[In, Out any](ctx context.Context, m *fetch.Mutation[In, Out], in In) (Out, error) {
	out, err := m.Mutate(ctx, in)
	if err != nil {
		return out, &failure{msg: m.Err(), err: err}
	}
	return out, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(false)
	t.SetRowLine(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRaw pretty prints a payload the console does not model.
func (a *app) printRaw(raw json.RawMessage) error {
	if len(raw) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		_, err = fmt.Fprintln(a.out, string(raw))
		return err
	}
	return a.printJSON(v)
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func (a *app) printReports(rows []view.ReportRow) error {
	if a.asJSON {
		return a.printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No reports yet.")
		return nil
	}
	t := newTable(a.out, "ID", "Title", "Type", "Dataset", "Status", "Created")
	for _, r := range rows {
		t.Append([]string{itoa(r.ID), r.Title, r.Type, itoa(r.DatasetID), r.Status.Label, r.Created})
	}
	t.Render()
	return nil
}

func (a *app) printPredictions(rows []view.PredictionRow) error {
	if a.asJSON {
		return a.printJSON(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No predictions yet.")
		return nil
	}
	t := newTable(a.out, "ID", "Type", "Dataset", "Model", "Status", "Confidence", "Created")
	for _, r := range rows {
		conf := "-"
		if r.Confidence != nil {
			conf = r.Percent + " (" + r.Confidence.Label + ")"
		}
		t.Append([]string{itoa(r.ID), r.Type, itoa(r.DatasetID), r.ModelVersion, r.Status.Label, conf, r.Created})
	}
	t.Render()
	return nil
}

func (a *app) printInsights(items []model.Insight) error {
	if a.asJSON {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No insights.")
		return nil
	}
	t := newTable(a.out, "ID", "Severity", "Type", "Title", "Generated", "Valid Until")
	for _, in := range items {
		t.Append([]string{
			itoa(in.ID),
			view.SeverityBadge(in.Severity).Label,
			in.InsightType,
			in.Title,
			view.FormatDate(in.GeneratedAt),
			view.FormatOptionalDate(in.ValidUntil),
		})
	}
	t.Render()
	return nil
}

func (a *app) printMetrics(items []model.Metric, totalPages int) error {
	if a.asJSON {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No metrics.")
		return nil
	}
	t := newTable(a.out, "Entity", "Name", "Type", "Value", "Unit", "Period", "Timestamp")
	for _, m := range items {
		t.Append([]string{
			m.EntityType + "/" + itoa(m.EntityID),
			m.MetricName,
			m.MetricType,
			strconv.FormatFloat(m.Value, 'f', -1, 64),
			m.Unit,
			m.AggregationPeriod,
			view.FormatOptionalDate(m.Timestamp),
		})
	}
	t.Render()
	if totalPages > 1 {
		fmt.Fprintf(a.out, "%d pages\n", totalPages)
	}
	return nil
}

func (a *app) printSchedules(items []model.Schedule) error {
	if a.asJSON {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No schedules.")
		return nil
	}
	t := newTable(a.out, "ID", "Name", "Type", "Dataset", "Frequency", "Active", "Next Run")
	for _, s := range items {
		t.Append([]string{
			itoa(s.ID),
			s.Name,
			view.Humanize(string(s.ReportType)),
			itoa(s.DatasetID),
			s.Frequency,
			strconv.FormatBool(s.Active),
			view.FormatOptionalDate(s.NextRunAt),
		})
	}
	t.Render()
	return nil
}

func (a *app) printDashboards(items []model.Dashboard) error {
	if a.asJSON {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No dashboards.")
		return nil
	}
	t := newTable(a.out, "ID", "Name", "Public", "Updated")
	for _, d := range items {
		t.Append([]string{itoa(d.ID), d.Name, strconv.FormatBool(d.IsPublic), view.FormatOptionalDate(d.UpdatedAt)})
	}
	t.Render()
	return nil
}

func (a *app) printQuality(items []model.QualityAssessment) error {
	if a.asJSON {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No assessments.")
		return nil
	}
	score := func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }
	t := newTable(a.out, "Dataset", "Overall", "Completeness", "Accuracy", "Consistency", "Timeliness", "Assessed")
	for _, q := range items {
		t.Append([]string{
			itoa(q.DatasetID),
			score(q.OverallScore),
			score(q.CompletenessScore),
			score(q.AccuracyScore),
			score(q.ConsistencyScore),
			score(q.TimelinessScore),
			view.FormatOptionalDate(q.AssessedAt),
		})
	}
	t.Render()
	return nil
}
