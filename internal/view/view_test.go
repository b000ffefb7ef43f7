package view

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/evmarket/analytics-console/internal/analytics"
	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

type reply struct {
	status int
	body   string
}

// fakeBackend answers from a table keyed by "METHOD path". Missing entries
// answer 404.
type fakeBackend struct {
	mu       sync.Mutex
	replies  map[string]reply
	requests []transport.Request
}

func newFakeBackend(replies map[string]reply) *fakeBackend {
	if replies == nil {
		replies = map[string]reply{}
	}
	return &fakeBackend{replies: replies}
}

func (b *fakeBackend) set(key string, r reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replies[key] = r
}

func (b *fakeBackend) Do(_ context.Context, req transport.Request) (*transport.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	r, ok := b.replies[req.Method+" "+req.Path]
	if !ok {
		return nil, &transport.Error{Endpoint: req.Endpoint, StatusCode: http.StatusNotFound}
	}
	if r.status >= 400 {
		return nil, &transport.Error{Endpoint: req.Endpoint, StatusCode: r.status, Message: r.body}
	}
	return &transport.Response{StatusCode: http.StatusOK, Body: []byte(r.body)}, nil
}

func (b *fakeBackend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *fakeBackend) find(method, path string) (transport.Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return transport.Request{}, false
}

func newFactory(b *fakeBackend) *hooks.Factory {
	return hooks.New(analytics.New(b, nil), hooks.Defaults{}, nil)
}

func ok(body string) reply { return reply{status: http.StatusOK, body: body} }

func TestConfidenceBand(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.95, "High"},
		{0.80, "High"},
		{0.79, "Medium"},
		{0.60, "Medium"},
		{0.59, "Low"},
		{0, "Low"},
	}
	for _, tt := range tests {
		if got := ConfidenceBand(tt.in).Label; got != tt.want {
			t.Errorf("ConfidenceBand(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestConfidencePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.8765, "87.7%"},
		{0.8, "80.0%"},
		{1, "100.0%"},
		{0.05, "5.0%"},
	}
	for _, tt := range tests {
		if got := ConfidencePercent(tt.in); got != tt.want {
			t.Errorf("ConfidencePercent(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestStatusBadge(t *testing.T) {
	tests := []struct {
		status model.Status
		tone   Tone
	}{
		{model.StatusPending, ToneYellow},
		{model.StatusProcessing, ToneBlue},
		{model.StatusCompleted, ToneGreen},
		{model.StatusFailed, ToneRed},
		{"UNKNOWN", ToneGray},
		{"", ToneGray},
	}
	for _, tt := range tests {
		b := StatusBadge(tt.status)
		if b.Tone != tt.tone {
			t.Errorf("StatusBadge(%q): expected %s, got %s", tt.status, tt.tone, b.Tone)
		}
		if b.Label != string(tt.status) {
			t.Errorf("expected label %q, got %q", tt.status, b.Label)
		}
	}
}

func TestSeverityBadge(t *testing.T) {
	if SeverityBadge(model.SeverityHigh).Tone != ToneRed {
		t.Error("HIGH should be red")
	}
	if SeverityBadge(model.SeverityMedium).Tone != ToneYellow {
		t.Error("MEDIUM should be yellow")
	}
	if SeverityBadge("CRITICAL").Tone != ToneGreen {
		t.Error("unknown severity should fall through to green")
	}
}

func TestHumanizeAndFormatDate(t *testing.T) {
	if got := Humanize("BATTERY_HEALTH"); got != "BATTERY HEALTH" {
		t.Errorf("unexpected %q", got)
	}
	ts := model.NewTimestamp(time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC))
	if got := FormatDate(ts); got != "May 1, 2024, 02:30 PM" {
		t.Errorf("unexpected date %q", got)
	}
	if got := FormatDate(model.Timestamp{}); got != "-" {
		t.Errorf("expected dash for zero date, got %q", got)
	}
	if got := FormatOptionalDate(nil); got != "-" {
		t.Errorf("expected dash for nil date, got %q", got)
	}
}

func TestResultText(t *testing.T) {
	if got := ResultText([]byte(`"range 312km"`)); got != "range 312km" {
		t.Errorf("string result should be shown as is, got %q", got)
	}
	if got := ResultText([]byte(`{"km":312}`)); got != "{\n  \"km\": 312\n}" {
		t.Errorf("unexpected structured result %q", got)
	}
	if got := ResultText(nil); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestReportsListSubmitConvertsDatasetID(t *testing.T) {
	b := newFakeBackend(map[string]reply{
		"GET /reports/my-reports": ok(`[]`),
		"POST /reports":           ok(`{"id":12,"datasetId":42,"status":"PENDING"}`),
	})
	l := NewReportsList(newFactory(b), download.NewMemory(), nil)
	ctx := context.Background()
	l.Mount(ctx)

	l.OpenCreate()
	if l.Mode() != Creating {
		t.Fatalf("expected creating mode, got %s", l.Mode())
	}
	l.SetField("title", "Battery")
	l.SetField("datasetId", "42")

	if _, err := l.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	req, found := b.find(http.MethodPost, "/reports")
	if !found {
		t.Fatal("expected create request")
	}
	body := req.Body.(model.CreateReportRequest)
	if body.DatasetID != 42 {
		t.Errorf("expected datasetId 42, got %d", body.DatasetID)
	}
	if body.ReportType != model.ReportBatteryHealth {
		t.Errorf("expected default report type, got %s", body.ReportType)
	}
	if l.Mode() != Browsing {
		t.Errorf("expected form to close, got %s", l.Mode())
	}
	if n := b.count(http.MethodGet, "/reports/my-reports"); n != 2 {
		t.Errorf("expected one refetch after create, got %d list calls", n)
	}

	l.OpenCreate()
	if f := l.View().Form; f == nil || f.Fields.DatasetID != "" || f.Fields.Title != "" {
		t.Errorf("expected form to be reset, got %+v", f)
	}
}

func TestReportsListSubmitInvalidDatasetID(t *testing.T) {
	b := newFakeBackend(map[string]reply{"GET /reports/my-reports": ok(`[]`)})
	l := NewReportsList(newFactory(b), download.NewMemory(), nil)
	l.OpenCreate()
	l.SetField("datasetId", "forty-two")

	_, err := l.Submit(context.Background())
	if !errors.Is(err, ErrInvalidDatasetID) {
		t.Errorf("expected ErrInvalidDatasetID, got %v", err)
	}
	if b.count(http.MethodPost, "/reports") != 0 {
		t.Error("no create request should be sent")
	}
	if l.Mode() != Creating {
		t.Errorf("form should stay open, got %s", l.Mode())
	}
	if v := l.View(); v.Form == nil || v.Form.Error == "" {
		t.Error("expected a form error")
	}
}

func TestReportsListSubmitServerError(t *testing.T) {
	b := newFakeBackend(map[string]reply{
		"GET /reports/my-reports": ok(`[]`),
		"POST /reports":           {status: http.StatusBadRequest, body: "Dataset not found"},
	})
	l := NewReportsList(newFactory(b), download.NewMemory(), nil)
	l.OpenCreate()
	l.SetField("datasetId", "999")

	if _, err := l.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	v := l.View()
	if v.Form == nil || v.Form.Error != "Dataset not found" {
		t.Errorf("expected server message on the form, got %+v", v.Form)
	}
	if v.Mode != Creating {
		t.Errorf("form should stay open, got %s", v.Mode)
	}
}

func TestSetFieldUnknown(t *testing.T) {
	l := NewReportsList(newFactory(newFakeBackend(nil)), download.NewMemory(), nil)
	if err := l.SetField("colour", "red"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestReportsListDelete(t *testing.T) {
	tests := []struct {
		name        string
		confirm     bool
		wantDeletes int
		wantLists   int
	}{
		{"confirmed", true, 1, 2},
		{"cancelled", false, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(map[string]reply{
				"GET /reports/my-reports": ok(`[{"id":3,"status":"COMPLETED"}]`),
				"DELETE /reports/3":       ok(``),
			})
			l := NewReportsList(newFactory(b), download.NewMemory(), nil)
			ctx := context.Background()
			l.Mount(ctx)

			var prompt string
			sent, err := l.Delete(ctx, 3, ConfirmFunc(func(_ context.Context, p string) bool {
				prompt = p
				return tt.confirm
			}))
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if sent != tt.confirm {
				t.Errorf("expected sent=%v, got %v", tt.confirm, sent)
			}
			if prompt == "" {
				t.Error("expected a confirmation prompt")
			}
			if n := b.count(http.MethodDelete, "/reports/3"); n != tt.wantDeletes {
				t.Errorf("expected %d deletes, got %d", tt.wantDeletes, n)
			}
			if n := b.count(http.MethodGet, "/reports/my-reports"); n != tt.wantLists {
				t.Errorf("expected %d list calls, got %d", tt.wantLists, n)
			}
		})
	}
}

func TestReportsListExportDoesNotTouchList(t *testing.T) {
	b := newFakeBackend(map[string]reply{
		"GET /reports/my-reports":              ok(`[{"id":7,"title":"Range","status":"COMPLETED"}]`),
		"GET /advanced/reports/7/export/pdf":   ok(`%PDF`),
		"GET /advanced/reports/7/export/excel": ok(`PK`),
		"GET /advanced/reports/7/export/csv":   ok(`a,b`),
	})
	sink := download.NewMemory()
	l := NewReportsList(newFactory(b), sink, nil)
	ctx := context.Background()
	l.Mount(ctx)
	before := l.View()

	for _, f := range []model.ExportFormat{model.ExportPDF, model.ExportExcel, model.ExportCSV} {
		if _, err := l.Export(ctx, 7, f); err != nil {
			t.Fatalf("export %s failed: %v", f, err)
		}
	}

	for _, path := range []string{"/advanced/reports/7/export/pdf", "/advanced/reports/7/export/excel", "/advanced/reports/7/export/csv"} {
		if n := b.count(http.MethodGet, path); n != 1 {
			t.Errorf("expected exactly one call to %s, got %d", path, n)
		}
	}
	if n := b.count(http.MethodGet, "/reports/my-reports"); n != 1 {
		t.Errorf("export must not reload the list, got %d list calls", n)
	}
	after := l.View()
	if len(after.Rows) != len(before.Rows) || after.Rows[0] != before.Rows[0] || after.Mode != before.Mode {
		t.Error("export must not change list state")
	}
	if len(sink.Names()) != 3 {
		t.Errorf("expected 3 saved files, got %v", sink.Names())
	}
}

func TestReportsListDetail(t *testing.T) {
	b := newFakeBackend(map[string]reply{
		"GET /reports/my-reports": ok(`[]`),
		"GET /reports/5":          ok(`{"id":5,"title":"Charging","status":"PROCESSING"}`),
		"GET /reports/6":          {status: http.StatusInternalServerError},
	})
	l := NewReportsList(newFactory(b), download.NewMemory(), nil)
	ctx := context.Background()

	l.Select(ctx, 5)
	v := l.View()
	if v.Mode != ViewingDetail {
		t.Fatalf("expected detail mode, got %s", v.Mode)
	}
	if v.Detail == nil || !v.Detail.Found || v.Detail.Record.Title != "Charging" {
		t.Errorf("unexpected detail %+v", v.Detail)
	}

	l.Select(ctx, 404)
	v = l.View()
	if v.Detail.Found || v.Detail.Error != "" {
		t.Errorf("missing report should be an empty state, got %+v", v.Detail)
	}

	l.Select(ctx, 6)
	if v = l.View(); v.Detail.Error == "" {
		t.Error("server failure should surface as an error")
	}

	l.CloseDetail()
	v = l.View()
	if v.Mode != Browsing || v.Detail != nil {
		t.Errorf("expected detail closed, got %s %+v", v.Mode, v.Detail)
	}
}

func TestReportsListCancelKeepsValues(t *testing.T) {
	l := NewReportsList(newFactory(newFakeBackend(nil)), download.NewMemory(), nil)
	l.OpenCreate()
	l.SetField("title", "Draft")
	l.Cancel()
	if l.Mode() != Browsing {
		t.Fatalf("expected browsing, got %s", l.Mode())
	}
	l.OpenCreate()
	if got := l.View().Form.Fields.Title; got != "Draft" {
		t.Errorf("expected typed value to survive cancel, got %q", got)
	}
}

func TestPredictionsList(t *testing.T) {
	b := newFakeBackend(map[string]reply{
		"GET /predictions/my-predictions": ok(`[{"id":1,"predictionType":"RANGE_ESTIMATION","status":"COMPLETED","confidence":0.79},{"id":2,"status":"PENDING"}]`),
		"POST /predictions":               ok(`{"id":3,"status":"PENDING"}`),
		"GET /predictions/1":              ok(`{"id":1,"status":"COMPLETED","confidence":0.8,"predictionResult":"312 km"}`),
	})
	l := NewPredictionsList(newFactory(b))
	ctx := context.Background()
	l.Mount(ctx)

	v := l.View()
	if len(v.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(v.Rows))
	}
	if v.Rows[0].Confidence == nil || v.Rows[0].Confidence.Label != "Medium" || v.Rows[0].Percent != "79.0%" {
		t.Errorf("unexpected confidence %+v %s", v.Rows[0].Confidence, v.Rows[0].Percent)
	}
	if v.Rows[1].Confidence != nil {
		t.Error("missing confidence should have no badge")
	}
	if v.Rows[0].Type != "RANGE ESTIMATION" {
		t.Errorf("unexpected type label %q", v.Rows[0].Type)
	}

	l.OpenCreate()
	l.SetField("datasetId", "42")
	if _, err := l.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	req, _ := b.find(http.MethodPost, "/predictions")
	body := req.Body.(model.CreatePredictionRequest)
	if body.DatasetID != 42 || body.ModelVersion != "v1.0" {
		t.Errorf("unexpected prediction request %+v", body)
	}

	l.Select(ctx, 1)
	v = l.View()
	if v.Result != "312 km" {
		t.Errorf("unexpected result text %q", v.Result)
	}
}

type pageObserver struct {
	mu        sync.Mutex
	fallbacks []string
	downloads int
}

func (o *pageObserver) MockFallback(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks = append(o.fallbacks, reason)
}

func (o *pageObserver) Downloaded(string, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.downloads++
}

func pageBackend(insights reply) *fakeBackend {
	return newFakeBackend(map[string]reply{
		"GET /insights/active":            insights,
		"GET /reports/my-reports":         ok(`[]`),
		"GET /predictions/my-predictions": ok(`[]`),
		"POST /insights/21/deactivate":    ok(``),
		"POST /reports":                   ok(`{"id":1}`),
		"POST /predictions":               ok(`{"id":1}`),
	})
}

func TestProviderPageMockFallback(t *testing.T) {
	tests := []struct {
		name    string
		reply   reply
		reason  string
		wantErr bool
	}{
		{"empty list", ok(`[]`), FallbackEmpty, false},
		{"backend error", reply{status: http.StatusInternalServerError}, FallbackError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pageBackend(tt.reply)
			obs := &pageObserver{}
			p := NewProviderPage(newFactory(b), download.NewMemory(), obs)
			ctx := context.Background()

			err := p.Mount(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("unexpected mount error %v", err)
			}

			v := p.InsightsView()
			if !v.Demo || v.Reason != tt.reason {
				t.Errorf("expected demo with reason %s, got demo=%v reason=%s", tt.reason, v.Demo, v.Reason)
			}
			if len(v.Rows) != 4 {
				t.Fatalf("expected the four mock insights, got %d", len(v.Rows))
			}
			wantIDs := []int64{101, 102, 103, 104}
			for i, row := range v.Rows {
				if row.ID != wantIDs[i] {
					t.Errorf("row %d: expected id %d, got %d", i, wantIDs[i], row.ID)
				}
				if !row.DeactivateDisabled {
					t.Errorf("row %d: deactivate should be disabled on demo data", i)
				}
			}
			if len(obs.fallbacks) != 1 || obs.fallbacks[0] != tt.reason {
				t.Errorf("expected one %s fallback, got %v", tt.reason, obs.fallbacks)
			}

			sent, err := p.Deactivate(ctx, 101, Confirmed(true))
			if !errors.Is(err, ErrDemoData) || sent {
				t.Errorf("expected ErrDemoData, got sent=%v err=%v", sent, err)
			}
			if b.count(http.MethodPost, "/insights/101/deactivate") != 0 {
				t.Error("no deactivate request should be sent for demo data")
			}
		})
	}
}

func TestProviderPageLiveInsights(t *testing.T) {
	b := pageBackend(ok(`[{"id":21,"title":"Charging anomaly","severity":"HIGH","active":true,"generatedAt":"2024-05-01T10:00:00"}]`))
	p := NewProviderPage(newFactory(b), download.NewMemory(), nil)
	ctx := context.Background()
	if err := p.Mount(ctx); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	v := p.InsightsView()
	if v.Demo || len(v.Rows) != 1 || v.Rows[0].DeactivateDisabled {
		t.Fatalf("unexpected live view %+v", v)
	}
	if v.Rows[0].Severity.Tone != ToneRed {
		t.Errorf("expected red severity, got %s", v.Rows[0].Severity.Tone)
	}

	sent, err := p.Deactivate(ctx, 21, Confirmed(false))
	if sent || err != nil {
		t.Errorf("declined confirmation should send nothing, got sent=%v err=%v", sent, err)
	}
	if b.count(http.MethodPost, "/insights/21/deactivate") != 0 {
		t.Error("declined confirmation should not deactivate")
	}

	sent, err = p.Deactivate(ctx, 21, Confirmed(true))
	if !sent || err != nil {
		t.Fatalf("Deactivate failed: sent=%v err=%v", sent, err)
	}
	if b.count(http.MethodPost, "/insights/21/deactivate") != 1 {
		t.Error("expected one deactivate request")
	}
	if b.count(http.MethodGet, "/insights/active") != 2 {
		t.Error("expected insights to reload after deactivation")
	}
	if got := p.View().Notice; got != "Insight deactivated successfully" {
		t.Errorf("unexpected notice %q", got)
	}
}

func TestProviderPageFormsBumpKeys(t *testing.T) {
	b := pageBackend(ok(`[]`))
	p := NewProviderPage(newFactory(b), download.NewMemory(), nil)
	ctx := context.Background()
	p.Mount(ctx)

	oldReports := p.Reports()
	oldPredictions := p.Predictions()

	p.ReportForm().SetField("datasetId", "42")
	if _, err := p.ReportForm().Submit(ctx); err != nil {
		t.Fatalf("report submit failed: %v", err)
	}
	reportsKey, predictionsKey := p.Keys()
	if reportsKey != 1 || predictionsKey != 0 {
		t.Errorf("expected keys 1/0, got %d/%d", reportsKey, predictionsKey)
	}
	if p.Reports() == oldReports {
		t.Error("expected a fresh reports list instance")
	}
	if p.Predictions() != oldPredictions {
		t.Error("predictions list should be untouched")
	}
	if n := b.count(http.MethodGet, "/reports/my-reports"); n != 2 {
		t.Errorf("expected the new list to mount, got %d list calls", n)
	}
	if got := p.ReportForm().View().Fields.DatasetID; got != "" {
		t.Errorf("expected form reset, got %q", got)
	}

	p.PredictionForm().SetField("datasetId", "7")
	if _, err := p.PredictionForm().Submit(ctx); err != nil {
		t.Fatalf("prediction submit failed: %v", err)
	}
	if _, predictionsKey = p.Keys(); predictionsKey != 1 {
		t.Errorf("expected predictions key 1, got %d", predictionsKey)
	}
	if p.Predictions() == oldPredictions {
		t.Error("expected a fresh predictions list instance")
	}
}

func TestProviderPageRecoversFromDemo(t *testing.T) {
	b := pageBackend(ok(`[]`))
	p := NewProviderPage(newFactory(b), download.NewMemory(), nil)
	ctx := context.Background()
	p.Mount(ctx)
	if !p.Demo() {
		t.Fatal("expected demo data")
	}

	b.set("GET /insights/active", ok(`[{"id":21,"severity":"LOW"}]`))
	p.RefreshInsights(ctx)
	if p.Demo() {
		t.Error("expected live data after refresh")
	}
}

func TestProviderPageFailedRefreshKeepsLiveInsights(t *testing.T) {
	b := pageBackend(ok(`[{"id":21,"title":"Charging anomaly","severity":"HIGH","active":true}]`))
	obs := &pageObserver{}
	p := NewProviderPage(newFactory(b), download.NewMemory(), obs)
	ctx := context.Background()
	if err := p.Mount(ctx); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	b.set("GET /insights/active", reply{status: http.StatusInternalServerError, body: "Insights unavailable"})
	if err := p.RefreshInsights(ctx); err == nil {
		t.Fatal("expected refresh error")
	}

	v := p.InsightsView()
	if v.Demo || v.Reason != "" {
		t.Errorf("expected live rows after failed refresh, got demo=%v reason=%s", v.Demo, v.Reason)
	}
	if len(v.Rows) != 1 || v.Rows[0].ID != 21 {
		t.Fatalf("expected live insight 21, got %+v", v.Rows)
	}
	if v.Error != "Insights unavailable" {
		t.Errorf("expected error banner, got %q", v.Error)
	}
	if len(obs.fallbacks) != 0 {
		t.Errorf("expected no demo fallback, got %v", obs.fallbacks)
	}

	sent, err := p.Deactivate(ctx, 21, Confirmed(true))
	if !sent || err != nil {
		t.Errorf("expected live insight to deactivate, got sent=%v err=%v", sent, err)
	}
	if b.count(http.MethodPost, "/insights/21/deactivate") != 1 {
		t.Error("expected one deactivate request")
	}
}
