package view

import (
	"context"
	"sync"

	"github.com/evmarket/analytics-console/internal/download"
	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

const deleteReportPrompt = "Are you sure you want to delete this report?"

// ReportRow is one line of the reports table.
type ReportRow struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	DatasetID int64  `json:"datasetId"`
	Status    Badge  `json:"status"`
	Created   string `json:"created"`
}

// Detail is the state of a detail modal. Found is false when the record
// does not exist, which is shown as an empty state rather than an error.
type Detail[T any] struct {
	ID      int64  `json:"id"`
	Loading bool   `json:"loading"`
	Found   bool   `json:"found"`
	Record  *T     `json:"record,omitempty"`
	Error   string `json:"error,omitempty"`
}

func detailOf[T any](id int64, q *fetch.Query[T]) *Detail[T] {
	if q == nil {
		return nil
	}
	snap := q.Snapshot()
	d := &Detail[T]{ID: id, Loading: snap.Loading()}
	switch snap.State {
	case fetch.Success:
		d.Found = true
		d.Record = &snap.Data
	case fetch.Failed:
		if !transport.IsNotFound(q.Cause()) {
			d.Error = snap.Error
		}
	}
	return d
}

// ReportsView is a snapshot of the reports list.
type ReportsView struct {
	Mode    Mode                    `json:"mode"`
	Loading bool                    `json:"loading"`
	Error   string                  `json:"error,omitempty"`
	Rows    []ReportRow             `json:"rows"`
	Form    *FormView[ReportFields] `json:"form,omitempty"`
	Detail  *Detail[model.Report]   `json:"detail,omitempty"`
	Export  string                  `json:"exportError,omitempty"`
}

// ReportsList lists the caller's reports with a create form, a detail
// modal, deletion and export.
type ReportsList struct {
	factory  *hooks.Factory
	list     *fetch.Query[[]model.Report]
	form     *CreateReportForm
	remove   *fetch.Mutation[int64, struct{}]
	exporter *hooks.Exporter

	mu       sync.Mutex
	mode     Mode
	selected int64
	detail   *fetch.Query[model.Report]
}

// NewReportsList creates the list. Exports are saved into sink; obs may be nil.
func NewReportsList(f *hooks.Factory, sink download.Sink, obs hooks.DownloadObserver) *ReportsList {
	l := &ReportsList{
		factory:  f,
		list:     f.Reports(),
		remove:   f.DeleteReport(),
		exporter: f.Exporter(sink, obs),
	}
	l.form = NewCreateReportForm(f, func(ctx context.Context) {
		l.mu.Lock()
		l.mode = Browsing
		l.mu.Unlock()
		l.list.Refetch(ctx)
	})
	return l
}

// Mount loads the list.
func (l *ReportsList) Mount(ctx context.Context) error {
	return l.list.Mount(ctx)
}

func (l *ReportsList) Refetch(ctx context.Context) error {
	return l.list.Refetch(ctx)
}

func (l *ReportsList) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

// OpenCreate shows the create form.
func (l *ReportsList) OpenCreate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = Creating
	l.selected = 0
	l.detail = nil
}

// Cancel hides the create form. Typed values are kept.
func (l *ReportsList) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == Creating {
		l.mode = Browsing
	}
}

func (l *ReportsList) SetField(name, value string) error {
	return l.form.SetField(name, value)
}

func (l *ReportsList) Fill(fields ReportFields) {
	l.form.Fill(fields)
}

// Submit sends the create form. On success the form resets and closes and
// the list reloads.
func (l *ReportsList) Submit(ctx context.Context) (model.Report, error) {
	return l.form.Submit(ctx)
}

// Select opens the detail modal of a report.
func (l *ReportsList) Select(ctx context.Context, id int64) error {
	q := l.factory.Report(id)
	l.mu.Lock()
	l.mode = ViewingDetail
	l.selected = id
	l.detail = q
	l.mu.Unlock()
	return q.Mount(ctx)
}

// CloseDetail closes the detail modal.
func (l *ReportsList) CloseDetail() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == ViewingDetail {
		l.mode = Browsing
	}
	l.selected = 0
	l.detail = nil
}

// Delete removes a report once confirm agrees, then reloads the list.
// It reports whether the delete was sent.
func (l *ReportsList) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if !confirm.Confirm(ctx, deleteReportPrompt) {
		return false, nil
	}
	if _, err := l.remove.Mutate(ctx, id); err != nil {
		return true, err
	}
	l.list.Refetch(ctx)
	return true, nil
}

// Export downloads one rendition of a report. The list is not touched.
func (l *ReportsList) Export(ctx context.Context, id int64, format model.ExportFormat) (hooks.Export, error) {
	return l.exporter.Mutate(ctx, hooks.ExportRequest{ReportID: id, Format: format})
}

func (l *ReportsList) View() ReportsView {
	snap := l.list.Snapshot()
	v := ReportsView{
		Loading: snap.Loading(),
		Error:   snap.Error,
		Rows:    make([]ReportRow, 0, len(snap.Data)),
		Export:  l.exporter.Err(),
	}
	if msg := l.remove.Err(); msg != "" && v.Error == "" {
		v.Error = msg
	}
	for _, r := range snap.Data {
		v.Rows = append(v.Rows, ReportRow{
			ID:        r.ID,
			Title:     r.Title,
			Type:      Humanize(string(r.ReportType)),
			DatasetID: r.DatasetID,
			Status:    StatusBadge(r.Status),
			Created:   FormatDate(r.CreatedAt),
		})
	}

	l.mu.Lock()
	v.Mode = l.mode
	selected, detail := l.selected, l.detail
	l.mu.Unlock()

	if v.Mode == Creating {
		form := l.form.View()
		v.Form = &form
	}
	v.Detail = detailOf(selected, detail)
	return v
}
