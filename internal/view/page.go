package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
)

const deactivatePrompt = "Are you sure you want to deactivate this insight?"

// Reasons for showing demo insights.
const (
	FallbackError = "error"
	FallbackEmpty = "empty"
)

// PageObserver is told about demo substitutions and downloads made by a page.
type PageObserver interface {
	hooks.DownloadObserver
	MockFallback(reason string)
}

// InsightRow is one insight card.
type InsightRow struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Type               string `json:"type"`
	Severity           Badge  `json:"severity"`
	DatasetID          *int64 `json:"datasetId,omitempty"`
	Generated          string `json:"generated"`
	ValidUntil         string `json:"validUntil"`
	DeactivateDisabled bool   `json:"deactivateDisabled"`
	Deactivating       bool   `json:"deactivating"`
}

// InsightsView is the insights panel of the provider page.
type InsightsView struct {
	Loading bool         `json:"loading"`
	Demo    bool         `json:"demo"`
	Reason  string       `json:"reason,omitempty"`
	Error   string       `json:"error,omitempty"`
	Rows    []InsightRow `json:"rows"`
}

// PageView is a snapshot of the whole provider analytics page.
type PageView struct {
	Insights       InsightsView               `json:"insights"`
	ReportForm     FormView[ReportFields]     `json:"reportForm"`
	PredictionForm FormView[PredictionFields] `json:"predictionForm"`
	Reports        ReportsView                `json:"reports"`
	Predictions    PredictionsView            `json:"predictions"`
	ReportsKey     int                        `json:"reportsKey"`
	PredictionsKey int                        `json:"predictionsKey"`
	Notice         string                     `json:"notice,omitempty"`
}

// ProviderPage is the provider analytics page: active insights with
// deactivation, report and prediction creation forms, and the two lists.
//
// The lists are keyed by refresh counters. A successful form submission
// bumps the matching key, which replaces the list with a fresh instance.
type ProviderPage struct {
	factory *hooks.Factory
	sink    download.Sink
	obs     PageObserver
	now     func() time.Time

	insights       *fetch.Query[[]model.Insight]
	manage         *hooks.InsightManagement
	reportForm     *CreateReportForm
	predictionForm *CreatePredictionForm

	mu             sync.Mutex
	reportsKey     int
	predictionsKey int
	reports        *ReportsList
	predictions    *PredictionsList
	deactivating   int64
	notice         string
}

// NewProviderPage creates the page. obs may be nil.
func NewProviderPage(f *hooks.Factory, sink download.Sink, obs PageObserver) *ProviderPage {
	p := &ProviderPage{
		factory: f,
		sink:    sink,
		obs:     obs,
		now:     time.Now,
		manage:  f.InsightManagement(),
	}
	p.insights = f.ActiveInsights(fetch.WithOnChange(p.insightsChanged))
	p.reportForm = NewCreateReportForm(f, p.reportCreated)
	p.predictionForm = NewCreatePredictionForm(f, p.predictionCreated)
	p.reports = p.newReportsList()
	p.predictions = NewPredictionsList(f)
	return p
}

func (p *ProviderPage) newReportsList() *ReportsList {
	var dobs hooks.DownloadObserver
	if p.obs != nil {
		dobs = p.obs
	}
	return NewReportsList(p.factory, p.sink, dobs)
}

// Mount loads insights, reports and predictions concurrently. A failure
// stays in its own panel; the first one is returned.
func (p *ProviderPage) Mount(ctx context.Context) error {
	reports, predictions := p.Reports(), p.Predictions()

	var g errgroup.Group
	g.Go(func() error { return p.insights.Mount(ctx) })
	g.Go(func() error { return reports.Mount(ctx) })
	g.Go(func() error { return predictions.Mount(ctx) })
	return g.Wait()
}

// RefreshInsights reloads the insights panel.
func (p *ProviderPage) RefreshInsights(ctx context.Context) error {
	return p.insights.Refetch(ctx)
}

// insightsChanged logs a demo substitution each time a fetch settles into one.
func (p *ProviderPage) insightsChanged() {
	snap := p.insights.Snapshot()
	if snap.State != fetch.Success && snap.State != fetch.Failed {
		return
	}
	reason := fallbackReason(snap)
	if reason == "" {
		return
	}
	slog.Warn("showing demo insights", "reason", reason, "error", snap.Error)
	if p.obs != nil {
		p.obs.MockFallback(reason)
	}
}

func fallbackReason(snap fetch.Snapshot[[]model.Insight]) string {
	switch {
	case len(snap.Data) > 0:
		return ""
	case snap.State == fetch.Failed:
		return FallbackError
	default:
		return FallbackEmpty
	}
}

// Demo reports whether the insights panel shows mock data.
func (p *ProviderPage) Demo() bool {
	return fallbackReason(p.insights.Snapshot()) != ""
}

// Deactivate turns off a live insight after confirmation and reloads the
// panel. Demo insights are refused with ErrDemoData without any request.
func (p *ProviderPage) Deactivate(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if p.Demo() {
		p.setNotice("Cannot deactivate mock insights. This is demo data only.")
		return false, ErrDemoData
	}
	if !confirm.Confirm(ctx, deactivatePrompt) {
		return false, nil
	}

	p.mu.Lock()
	p.deactivating = id
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.deactivating = 0
		p.mu.Unlock()
	}()

	if _, err := p.manage.Deactivate.Mutate(ctx, id); err != nil {
		p.setNotice(fmt.Sprintf("Failed to deactivate insight: %s", p.manage.Deactivate.Err()))
		return true, err
	}
	p.setNotice("Insight deactivated successfully")
	p.insights.Refetch(ctx)
	return true, nil
}

func (p *ProviderPage) setNotice(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice = msg
}

func (p *ProviderPage) reportCreated(ctx context.Context) {
	p.mu.Lock()
	p.reportsKey++
	p.reports = p.newReportsList()
	list := p.reports
	p.mu.Unlock()
	list.Mount(ctx)
}

func (p *ProviderPage) predictionCreated(ctx context.Context) {
	p.mu.Lock()
	p.predictionsKey++
	p.predictions = NewPredictionsList(p.factory)
	list := p.predictions
	p.mu.Unlock()
	list.Mount(ctx)
}

// ReportForm is the standalone report creation form.
func (p *ProviderPage) ReportForm() *CreateReportForm {
	return p.reportForm
}

func (p *ProviderPage) PredictionForm() *CreatePredictionForm {
	return p.predictionForm
}

// Reports returns the current reports list instance.
func (p *ProviderPage) Reports() *ReportsList {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reports
}

func (p *ProviderPage) Predictions() *PredictionsList {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.predictions
}

// Keys returns the reports and predictions refresh counters.
func (p *ProviderPage) Keys() (reports, predictions int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reportsKey, p.predictionsKey
}

// InsightsView renders the insights panel, substituting the demo set when
// no live insights are held. A failed refresh keeps the live rows and
// reports the error alongside them.
func (p *ProviderPage) InsightsView() InsightsView {
	snap := p.insights.Snapshot()
	reason := fallbackReason(snap)
	v := InsightsView{
		Loading: snap.Loading(),
		Error:   snap.Error,
		Demo:    reason != "",
		Reason:  reason,
	}

	items := snap.Data
	if v.Demo {
		items = MockInsights(p.now())
	}

	p.mu.Lock()
	deactivating := p.deactivating
	p.mu.Unlock()

	v.Rows = make([]InsightRow, 0, len(items))
	for _, in := range items {
		v.Rows = append(v.Rows, InsightRow{
			ID:                 in.ID,
			Title:              in.Title,
			Description:        in.Description,
			Type:               in.InsightType,
			Severity:           SeverityBadge(in.Severity),
			DatasetID:          in.DatasetID,
			Generated:          FormatDate(in.GeneratedAt),
			ValidUntil:         FormatOptionalDate(in.ValidUntil),
			DeactivateDisabled: v.Demo || deactivating == in.ID,
			Deactivating:       deactivating == in.ID,
		})
	}
	return v
}

func (p *ProviderPage) View() PageView {
	reportsKey, predictionsKey := p.Keys()
	p.mu.Lock()
	notice := p.notice
	p.mu.Unlock()

	return PageView{
		Insights:       p.InsightsView(),
		ReportForm:     p.reportForm.View(),
		PredictionForm: p.predictionForm.View(),
		Reports:        p.Reports().View(),
		Predictions:    p.Predictions().View(),
		ReportsKey:     reportsKey,
		PredictionsKey: predictionsKey,
		Notice:         notice,
	}
}
