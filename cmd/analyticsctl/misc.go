package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evmarket/analytics-console/internal/auth"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
	"github.com/evmarket/analytics-console/internal/view"
)

// --- Schedules ---

func schedulesList(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("schedules list"), args, 0); err != nil {
		return err
	}
	items, err := fetchQuery(ctx, a.factory.Schedules().List)
	if err != nil {
		return err
	}
	return a.printSchedules(items)
}

func schedulesCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("schedules create")
	name := fs.String("name", "", "schedule name")
	typ := fs.String("type", string(model.ReportBatteryHealth), "report type")
	dataset := fs.Int64("dataset", 0, "dataset id")
	frequency := fs.String("frequency", "", "DAILY, WEEKLY or MONTHLY")
	cron := fs.String("cron", "", "cron expression")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *name == "" || *dataset <= 0 || *frequency == "" {
		return usageErr("schedules create: --name, --dataset and --frequency are required")
	}
	rt, err := parseReportType(*typ)
	if err != nil {
		return err
	}

	m := a.factory.Schedules()
	s, err := m.Create(ctx, model.ScheduleRequest{
		Name:           *name,
		ReportType:     rt,
		DatasetID:      *dataset,
		Frequency:      strings.ToUpper(*frequency),
		CronExpression: *cron,
	})
	if err != nil {
		return &failure{msg: m.Err(), err: err}
	}
	if a.asJSON {
		return a.printJSON(s)
	}
	fmt.Fprintf(a.out, "Created schedule %d\n", s.ID)
	return nil
}

func schedulesToggle(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("schedules toggle"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "schedule id")
	if err != nil {
		return err
	}
	m := a.factory.Schedules()
	s, err := m.Toggle(ctx, id)
	if err != nil {
		return &failure{msg: m.Err(), err: err}
	}
	state := "paused"
	if s.Active {
		state = "active"
	}
	fmt.Fprintf(a.out, "Schedule %d is now %s\n", id, state)
	return nil
}

func schedulesDelete(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("schedules delete"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "schedule id")
	if err != nil {
		return err
	}
	if !a.confirmer().Confirm(ctx, "Are you sure you want to delete this schedule?") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	m := a.factory.Schedules()
	if err := m.Delete(ctx, id); err != nil {
		return &failure{msg: m.Err(), err: err}
	}
	fmt.Fprintf(a.out, "Deleted schedule %d\n", id)
	return nil
}

// --- Dashboards ---

func dashboardsMine(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("dashboards mine"), args, 0); err != nil {
		return err
	}
	items, err := fetchQuery(ctx, a.factory.MyDashboards())
	if err != nil {
		return err
	}
	return a.printDashboards(items)
}

func dashboardsPublic(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("dashboards public"), args, 0); err != nil {
		return err
	}
	items, err := fetchQuery(ctx, a.factory.PublicDashboards())
	if err != nil {
		return err
	}
	return a.printDashboards(items)
}

func dashboardsShow(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("dashboards show"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dashboard id")
	if err != nil {
		return err
	}
	d, err := fetchQuery(ctx, a.factory.Dashboard(id))
	if transport.IsNotFound(err) {
		return fmt.Errorf("dashboard %d not found", id)
	}
	if err != nil {
		return err
	}
	return a.printJSON(d)
}

type dashboardFlags struct {
	name        *string
	description *string
	layout      *string
	widgets     *string
	public      *bool
}

func addDashboardFlags(fs *flag.FlagSet) dashboardFlags {
	return dashboardFlags{
		name:        fs.String("name", "", "dashboard name"),
		description: fs.String("description", "", "description"),
		layout:      fs.String("layout", "", "JSON file holding the layout"),
		widgets:     fs.String("widgets", "", "JSON file holding the widgets"),
		public:      fs.Bool("public", false, "share the dashboard"),
	}
}

func (d dashboardFlags) request(cmd string) (model.DashboardRequest, error) {
	if *d.name == "" {
		return model.DashboardRequest{}, usageErr("%s: --name is required", cmd)
	}
	layout, err := readJSONFile(*d.layout)
	if err != nil {
		return model.DashboardRequest{}, err
	}
	widgets, err := readJSONFile(*d.widgets)
	if err != nil {
		return model.DashboardRequest{}, err
	}
	return model.DashboardRequest{
		Name:        *d.name,
		Description: *d.description,
		Layout:      layout,
		Widgets:     widgets,
		IsPublic:    *d.public,
	}, nil
}

func readJSONFile(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("parsing %s: invalid JSON", path)
	}
	return json.RawMessage(data), nil
}

func dashboardsCreate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboards create")
	df := addDashboardFlags(fs)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	req, err := df.request("dashboards create")
	if err != nil {
		return err
	}
	d, err := mutate(ctx, a.factory.DashboardManagement().Create, req)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(d)
	}
	fmt.Fprintf(a.out, "Created dashboard %d\n", d.ID)
	return nil
}

// dashboardsUpdate replaces the whole dashboard definition.
func dashboardsUpdate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboards update")
	df := addDashboardFlags(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dashboard id")
	if err != nil {
		return err
	}
	req, err := df.request("dashboards update")
	if err != nil {
		return err
	}
	d, err := mutate(ctx, a.factory.DashboardManagement().Update, hooks.DashboardUpdate{ID: id, Request: req})
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(d)
	}
	fmt.Fprintf(a.out, "Updated dashboard %d\n", d.ID)
	return nil
}

func dashboardsDelete(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("dashboards delete"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dashboard id")
	if err != nil {
		return err
	}
	if !a.confirmer().Confirm(ctx, "Are you sure you want to delete this dashboard?") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if _, err := mutate(ctx, a.factory.DashboardManagement().Delete, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted dashboard %d\n", id)
	return nil
}

// --- Data quality ---

func qualityLatest(ctx context.Context, a *app, args []string) error {
	pos, err := parse(a.flags("quality latest"), args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dataset id")
	if err != nil {
		return err
	}
	q, err := fetchQuery(ctx, a.factory.LatestQuality(id))
	if transport.IsNotFound(err) {
		return fmt.Errorf("dataset %d has not been assessed", id)
	}
	if err != nil {
		return err
	}
	return a.printQuality([]model.QualityAssessment{q})
}

func qualityLow(ctx context.Context, a *app, args []string) error {
	fs := a.flags("quality low")
	threshold := fs.Float64("threshold", 0, "score threshold (default from config)")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *threshold < 0 || *threshold > 100 {
		return usageErr("threshold must be within [0, 100]")
	}
	items, err := fetchQuery(ctx, a.factory.LowQuality(*threshold))
	if err != nil {
		return err
	}
	return a.printQuality(items)
}

func qualityAssess(ctx context.Context, a *app, args []string) error {
	fs := a.flags("quality assess")
	var m model.DatasetQualityMetrics
	fs.Int64Var(&m.TotalRecords, "total", 0, "total records")
	fs.Int64Var(&m.MissingValues, "missing", 0, "records with missing values")
	fs.Int64Var(&m.DuplicateRecords, "duplicates", 0, "duplicate records")
	fs.Int64Var(&m.InvalidRecords, "invalid", 0, "invalid records")
	fs.Int64Var(&m.OutdatedRecords, "outdated", 0, "outdated records")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(pos[0], "dataset id")
	if err != nil {
		return err
	}
	if m.TotalRecords <= 0 {
		return usageErr("quality assess: --total is required")
	}
	q, err := mutate(ctx, a.factory.AssessQuality(), hooks.QualityInput{DatasetID: id, Metrics: m})
	if err != nil {
		return err
	}
	return a.printQuality([]model.QualityAssessment{q})
}

// --- Admin ---

func adminStats(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("admin stats"), args, 0); err != nil {
		return err
	}
	out, err := fetchQuery(ctx, a.factory.AdminStats())
	if err != nil {
		return err
	}
	return a.printRaw(out)
}

func whoami(_ context.Context, a *app, args []string) error {
	if _, err := parse(a.flags("whoami"), args, 0); err != nil {
		return err
	}
	token := a.tokens.Token()
	if token == "" {
		return fmt.Errorf("no API token configured")
	}
	id, err := auth.Inspect(token)
	if err != nil {
		return err
	}
	if a.asJSON {
		return a.printJSON(id)
	}

	expires := "never"
	if !id.ExpiresAt.IsZero() {
		expires = view.FormatDate(model.NewTimestamp(id.ExpiresAt))
	}
	t := newTable(a.out, "Field", "Value")
	t.AppendBulk([][]string{
		{"Subject", id.Subject},
		{"Email", id.Email},
		{"Roles", strings.Join(id.Roles, ", ")},
		{"Expires", expires},
		{"Expired", strconv.FormatBool(id.Expired(time.Now()))},
		{"Admin", strconv.FormatBool(id.IsAdmin())},
	})
	t.Render()
	return nil
}
