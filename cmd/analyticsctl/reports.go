package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

func reportsList(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("reports list"), args, 0); err != nil {
		return err
	}
	list := view.NewReportsList(a.factory, download.NewMemory(), nil)
	if err := list.Mount(ctx); err != nil {
		return &failure{msg: list.View().Error, err: err}
	}
	return a.printReports(list.View().Rows)
}

func reportsShow(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("reports show"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "report id")
	if err != nil {
		return err
	}

	r, err := fetchQuery(ctx, a.factory.Report(id))
	if transport.IsNotFound(err) {
		return fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(r)
	}

	t := newTable(a.out, "Field", "Value")
	t.AppendBulk([][]string{
		{"ID", itoa(r.ID)},
		{"Title", r.Title},
		{"Type", view.Humanize(string(r.ReportType))},
		{"Dataset", itoa(r.DatasetID)},
		{"Status", view.StatusBadge(r.Status).Label},
		{"Created", view.FormatDate(r.CreatedAt)},
		{"Completed", view.FormatOptionalDate(r.CompletedAt)},
		{"Description", r.Description},
	})
	t.Render()
	if len(r.Result) > 0 {
		fmt.Fprintln(a.out, "\nResult:")
		return a.printRaw(r.Result)
	}
	return nil
}

func parseReportType(s string) (model.ReportType, error) {
	rt := model.ReportType(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	for _, known := range model.ReportTypes {
		if rt == known {
			return rt, nil
		}
	}
	return "", usageErr("unknown report type %q", s)
}

func reportsCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("reports create")
	typ := fs.String("type", string(model.ReportBatteryHealth), "report type")
	dataset := fs.String("dataset", "", "dataset id")
	title := fs.String("title", "", "report title")
	desc := fs.String("description", "", "report description")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	rt, err := parseReportType(*typ)
	if err != nil {
		return err
	}

	form := view.NewCreateReportForm(a.factory, nil)
	form.Fill(view.ReportFields{
		ReportType:  string(rt),
		DatasetID:   *dataset,
		Title:       *title,
		Description: *desc,
	})
	report, err := form.Submit(ctx)
	if err != nil {
		return &failure{msg: form.View().Error, err: err}
	}
	if a.asJSON {
		return a.printJSON(report)
	}
	fmt.Fprintf(a.out, "Created report %d (%s)\n", report.ID, view.StatusBadge(report.Status).Label)
	return nil
}

func reportsDelete(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("reports delete"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "report id")
	if err != nil {
		return err
	}
	if !a.confirmer().Confirm(ctx, "Are you sure you want to delete this report?") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if _, err := mutate(ctx, a.factory.DeleteReport(), id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted report %d\n", id)
	return nil
}

func reportsExport(ctx context.Context, a *app, args []string) error {
	fs := a.flags("reports export")
	format := fs.String("format", string(model.ExportPDF), "pdf, excel or csv")
	out := fs.String("out", "", "directory to save into (default: api.download_dir)")
	inspect := fs.Bool("inspect", false, "summarize the worksheets of an excel export")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "report id")
	if err != nil {
		return err
	}
	f := model.ExportFormat(strings.ToLower(*format))
	if !f.Valid() {
		return usageErr("format must be pdf, excel or csv")
	}
	if *inspect && f != model.ExportExcel {
		return usageErr("--inspect needs --format excel")
	}
	dir := *out
	if dir == "" {
		dir = a.cfg.API.DownloadDir
	}

	exporter := a.factory.Exporter(download.NewDir(dir), nil)
	exp, err := mutate(ctx, exporter.Mutation, hooks.ExportRequest{ReportID: id, Format: f})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", exp.Path, exp.Bytes)

	if !*inspect {
		return nil
	}
	sheets, err := download.InspectExcel(exp.Data)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(sheets)
	}
	t := newTable(a.out, "Sheet", "Rows", "Columns", "Header")
	for _, s := range sheets {
		t.Append([]string{s.Name, itoa(int64(s.Rows)), itoa(int64(s.Columns)), strings.Join(s.Header, ", ")})
	}
	t.Render()
	return nil
}

func reportsCompare(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("reports compare"), args, -1)
	if err != nil {
		return err
	}
	if len(pos) < 2 {
		return usageErr("reports compare: at least two report ids are required")
	}
	ids := make([]int64, 0, len(pos))
	for _, p := range pos {
		id, err := parseID(p, "report id")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	out, err := mutate(ctx, a.factory.CompareReports(), ids)
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func reportsBenchmarks(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("reports benchmarks"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dataset id")
	if err != nil {
		return err
	}
	out, err := fetchQuery(ctx, a.factory.Benchmarks(id))
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func predictionsList(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("predictions list"), args, 0); err != nil {
		return err
	}
	list := view.NewPredictionsList(a.factory)
	if err := list.Mount(ctx); err != nil {
		return &failure{msg: list.View().Error, err: err}
	}
	return a.printPredictions(list.View().Rows)
}

func predictionsShow(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("predictions show"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "prediction id")
	if err != nil {
		return err
	}

	p, err := fetchQuery(ctx, a.factory.Prediction(id))
	if transport.IsNotFound(err) {
		return fmt.Errorf("prediction %d not found", id)
	}
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(p)
	}

	confidence := "-"
	if p.Confidence != nil {
		confidence = view.ConfidencePercent(*p.Confidence) + " (" + view.ConfidenceBand(*p.Confidence).Label + ")"
	}
	t := newTable(a.out, "Field", "Value")
	t.AppendBulk([][]string{
		{"ID", itoa(p.ID)},
		{"Type", view.Humanize(string(p.PredictionType))},
		{"Dataset", itoa(p.DatasetID)},
		{"Model", p.ModelVersion},
		{"Status", view.StatusBadge(p.Status).Label},
		{"Confidence", confidence},
		{"Created", view.FormatDate(p.CreatedAt)},
		{"Completed", view.FormatOptionalDate(p.CompletedAt)},
	})
	t.Render()
	if res := view.ResultText(p.PredictionResult); res != "" {
		fmt.Fprintf(a.out, "\nResult:\n%s\n", res)
	}
	return nil
}

func predictionsCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("predictions create")
	typ := fs.String("type", string(model.PredictionBatteryDegradation), "prediction type")
	dataset := fs.String("dataset", "", "dataset id")
	version := fs.String("model", model.DefaultModelVersion, "model version")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	pt := model.PredictionType(strings.ToUpper(strings.ReplaceAll(*typ, "-", "_")))
	known := false
	for _, k := range model.PredictionTypes {
		known = known || k == pt
	}
	if !known {
		return usageErr("unknown prediction type %q", *typ)
	}

	form := view.NewCreatePredictionForm(a.factory, nil)
	form.Fill(view.PredictionFields{PredictionType: string(pt), DatasetID: *dataset, ModelVersion: *version})
	p, err := form.Submit(ctx)
	if err != nil {
		return &failure{msg: form.View().Error, err: err}
	}
	if a.asJSON {
		return a.printJSON(p)
	}
	fmt.Fprintf(a.out, "Created prediction %d (%s)\n", p.ID, view.StatusBadge(p.Status).Label)
	return nil
}
