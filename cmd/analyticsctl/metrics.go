package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
)

func metricsRecord(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics record")
	batch := fs.String("batch", "", "JSON file holding an array of metrics")
	entityType := fs.String("entity-type", "", "entity type, e.g. DATASET")
	entityID := fs.Int64("entity-id", 0, "entity id")
	name := fs.String("name", "", "metric name")
	metricType := fs.String("type", "", "metric type")
	value := fs.Float64("value", 0, "metric value")
	unit := fs.String("unit", "", "unit")
	period := fs.String("period", "", "aggregation period, e.g. DAILY")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	rec := a.factory.MetricRecorder()

	if *batch != "" {
		data, err := os.ReadFile(*batch)
		if err != nil {
			return err
		}
		var metrics []model.Metric
		if err := json.Unmarshal(data, &metrics); err != nil {
			return fmt.Errorf("parsing %s: %w", *batch, err)
		}
		out, err := mutate(ctx, rec.Batch, metrics)
		if err != nil {
			return err
		}
		if a.asJSON {
			return a.printJSON(out)
		}
		fmt.Fprintf(a.out, "Recorded %d metrics\n", len(metrics))
		return nil
	}

	if *entityType == "" || *entityID <= 0 || *name == "" {
		return usageErr("metrics record: --entity-type, --entity-id and --name are required")
	}
	out, err := mutate(ctx, rec.Record, model.Metric{
		EntityType:        *entityType,
		EntityID:          *entityID,
		MetricName:        *name,
		MetricType:        *metricType,
		Value:             *value,
		Unit:              *unit,
		AggregationPeriod: *period,
	})
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(out)
	}
	fmt.Fprintf(a.out, "Recorded %s for %s/%d\n", out.MetricName, out.EntityType, out.EntityID)
	return nil
}

func entityArgs(pos []string) (string, int64, error) {
	id, err := parseID(pos[1], "entity id")
	return pos[0], id, err
}

func metricsEntity(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics entity")
	metricType := fs.String("metric-type", "", "only metrics of this type")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	entityType, entityID, err := entityArgs(pos)
	if err != nil {
		return err
	}

	q := a.factory.MetricsByEntity(hooks.EntityQuery{
		EntityType: entityType,
		EntityID:   entityID,
		MetricType: *metricType,
		PageParams: model.PageParams{Page: *page, Size: *size},
	})
	items, err := fetchQuery(ctx, q)
	if err != nil {
		return err
	}
	return a.printMetrics(items, q.TotalPages())
}

func metricsPeriod(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics period")
	start := fs.String("start", "", "window start (ISO-8601)")
	end := fs.String("end", "", "window end (ISO-8601)")
	metricType := fs.String("metric-type", "", "only metrics of this type")
	aggregation := fs.String("aggregation", "", "aggregation period")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	entityType, entityID, err := entityArgs(pos)
	if err != nil {
		return err
	}
	if *start == "" || *end == "" {
		return usageErr("metrics period: --start and --end are required")
	}

	q := a.factory.MetricsByPeriod(entityType, entityID, model.PeriodQuery{
		Period:            model.Period{Start: *start, End: *end},
		MetricType:        *metricType,
		AggregationPeriod: *aggregation,
		PageParams:        model.PageParams{Page: *page, Size: *size},
	})
	items, err := fetchQuery(ctx, q)
	if err != nil {
		return err
	}
	return a.printMetrics(items, q.TotalPages())
}

func metricsAverage(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics average")
	start := fs.String("start", "", "window start (ISO-8601)")
	end := fs.String("end", "", "window end (ISO-8601)")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	if *start == "" || *end == "" {
		return usageErr("metrics average: --start and --end are required")
	}
	out, err := fetchQuery(ctx, a.factory.AverageMetric(pos[0], pos[1], model.Period{Start: *start, End: *end}))
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func metricsSummary(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics summary")
	start := fs.String("start", "", "window start (ISO-8601)")
	end := fs.String("end", "", "window end (ISO-8601)")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	entityType, entityID, err := entityArgs(pos)
	if err != nil {
		return err
	}
	out, err := fetchQuery(ctx, a.factory.MetricsSummary(entityType, entityID, model.Period{Start: *start, End: *end}))
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func metricsType(ctx context.Context, a *app, args []string) error {
	fs := a.flags("metrics type")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	q := a.factory.MetricsByType(pos[0], model.PageParams{Page: *page, Size: *size})
	items, err := fetchQuery(ctx, q)
	if err != nil {
		return err
	}
	return a.printMetrics(items, q.TotalPages())
}
