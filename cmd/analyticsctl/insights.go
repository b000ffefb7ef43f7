package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/view"
)

// insightsActive lists active insights, optionally narrowed by one filter.
func insightsActive(ctx context.Context, a *app, args []string) error {
	fs := a.flags("insights active")
	dataset := fs.Int64("dataset", 0, "only insights of this dataset")
	severity := fs.String("severity", "", "only insights of this severity (high, medium, low)")
	category := fs.String("category", "", "only insights of this category")
	typ := fs.String("type", "", "only insights of this type")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	var q *fetch.Query[[]model.Insight]
	switch {
	case *dataset > 0:
		q = a.factory.InsightsByDataset(*dataset)
	case *severity != "":
		q = a.factory.InsightsBySeverity(model.Severity(strings.ToUpper(*severity)))
	case *category != "":
		q = a.factory.InsightsByCategory(*category)
	case *typ != "":
		q = a.factory.InsightsByType(*typ)
	default:
		q = a.factory.ActiveInsights()
	}
	items, err := fetchQuery(ctx, q)
	if err != nil {
		return err
	}
	return a.printInsights(items)
}

// insightsPage renders the provider analytics page, demo insights included.
func insightsPage(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("insights page"), args, 0); err != nil {
		return err
	}
	page := view.NewProviderPage(a.factory, download.NewMemory(), nil)
	// Panel failures are rendered in place.
	page.Mount(ctx)
	v := page.View()
	if a.asJSON {
		return a.printJSON(v)
	}

	fmt.Fprintln(a.out, "== Active insights ==")
	if v.Insights.Demo {
		fmt.Fprintln(a.out, "Demo data: no live insights are available yet.")
	}
	t := newTable(a.out, "ID", "Severity", "Type", "Title", "Generated")
	for _, r := range v.Insights.Rows {
		t.Append([]string{itoa(r.ID), r.Severity.Label, r.Type, r.Title, r.Generated})
	}
	t.Render()

	fmt.Fprintln(a.out, "\n== Reports ==")
	if v.Reports.Error != "" {
		fmt.Fprintln(a.out, v.Reports.Error)
	} else if err := a.printReports(v.Reports.Rows); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\n== Predictions ==")
	if v.Predictions.Error != "" {
		fmt.Fprintln(a.out, v.Predictions.Error)
		return nil
	}
	return a.printPredictions(v.Predictions.Rows)
}

func insightsTrending(ctx context.Context, a *app, args []string) error {
	fs := a.flags("insights trending")
	days := fs.Int("days", 0, "look-back window in days (default from config)")
	page := fs.Int("page", 0, "page number")
	size := fs.Int("size", 0, "page size (default from config)")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	q := a.factory.TrendingInsights(model.TrendingParams{Days: *days, PageParams: model.PageParams{Page: *page, Size: *size}})
	items, err := fetchQuery(ctx, q)
	if err != nil {
		return err
	}
	if err := a.printInsights(items); err != nil {
		return err
	}
	if !a.asJSON && q.TotalPages() > 1 {
		fmt.Fprintf(a.out, "page %d of %d\n", *page+1, q.TotalPages())
	}
	return nil
}

func insightsSummary(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("insights summary"), args, 0); err != nil {
		return err
	}
	out, err := fetchQuery(ctx, a.factory.InsightsSummary())
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func insightsDeactivate(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("insights deactivate"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "insight id")
	if err != nil {
		return err
	}
	if !a.confirmer().Confirm(ctx, "Are you sure you want to deactivate this insight?") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if _, err := mutate(ctx, a.factory.InsightManagement().Deactivate, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Insight deactivated successfully")
	return nil
}

func insightsActivate(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("insights activate"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "insight id")
	if err != nil {
		return err
	}
	if _, err := mutate(ctx, a.factory.InsightManagement().Activate, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Insight %d activated\n", id)
	return nil
}

func insightsGenerate(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("insights generate"), args, 1)
	if err != nil {
		return err
	}
	reportID, err := parseID(pos[0], "report id")
	if err != nil {
		return err
	}
	items, err := mutate(ctx, a.factory.InsightManagement().Generate, reportID)
	if err != nil {
		return err
	}
	return a.printInsights(items)
}
