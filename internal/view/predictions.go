package view

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
)

// PredictionRow is one line of the predictions table.
type PredictionRow struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	DatasetID    int64  `json:"datasetId"`
	ModelVersion string `json:"modelVersion"`
	Status       Badge  `json:"status"`
	Confidence   *Badge `json:"confidence,omitempty"`
	Percent      string `json:"percent,omitempty"`
	Created      string `json:"created"`
}

func predictionRow(p model.Prediction) PredictionRow {
	row := PredictionRow{
		ID:           p.ID,
		Type:         Humanize(string(p.PredictionType)),
		DatasetID:    p.DatasetID,
		ModelVersion: p.ModelVersion,
		Status:       StatusBadge(p.Status),
		Created:      FormatDate(p.CreatedAt),
	}
	if p.Confidence != nil {
		band := ConfidenceBand(*p.Confidence)
		row.Confidence = &band
		row.Percent = ConfidencePercent(*p.Confidence)
	}
	return row
}

// ResultText renders a prediction result for display. A JSON string is shown
// as is, anything else is indented.
func ResultText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// PredictionsView is a snapshot of the predictions list.
type PredictionsView struct {
	Mode    Mode                        `json:"mode"`
	Loading bool                        `json:"loading"`
	Error   string                      `json:"error,omitempty"`
	Rows    []PredictionRow             `json:"rows"`
	Form    *FormView[PredictionFields] `json:"form,omitempty"`
	Detail  *Detail[model.Prediction]   `json:"detail,omitempty"`
	Result  string                      `json:"result,omitempty"`
}

// PredictionsList lists the caller's predictions with a create form and a
// detail modal.
type PredictionsList struct {
	factory *hooks.Factory
	list    *fetch.Query[[]model.Prediction]
	form    *CreatePredictionForm

	mu       sync.Mutex
	mode     Mode
	selected int64
	detail   *fetch.Query[model.Prediction]
}

func NewPredictionsList(f *hooks.Factory) *PredictionsList {
	l := &PredictionsList{
		factory: f,
		list:    f.Predictions(),
	}
	l.form = NewCreatePredictionForm(f, func(ctx context.Context) {
		l.mu.Lock()
		l.mode = Browsing
		l.mu.Unlock()
		l.list.Refetch(ctx)
	})
	return l
}

func (l *PredictionsList) Mount(ctx context.Context) error {
	return l.list.Mount(ctx)
}

func (l *PredictionsList) Refetch(ctx context.Context) error {
	return l.list.Refetch(ctx)
}

func (l *PredictionsList) Mode() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}

func (l *PredictionsList) OpenCreate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mode = Creating
	l.selected = 0
	l.detail = nil
}

func (l *PredictionsList) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == Creating {
		l.mode = Browsing
	}
}

func (l *PredictionsList) SetField(name, value string) error {
	return l.form.SetField(name, value)
}

func (l *PredictionsList) Fill(fields PredictionFields) {
	l.form.Fill(fields)
}

func (l *PredictionsList) Submit(ctx context.Context) (model.Prediction, error) {
	return l.form.Submit(ctx)
}

func (l *PredictionsList) Select(ctx context.Context, id int64) error {
	q := l.factory.Prediction(id)
	l.mu.Lock()
	l.mode = ViewingDetail
	l.selected = id
	l.detail = q
	l.mu.Unlock()
	return q.Mount(ctx)
}

func (l *PredictionsList) CloseDetail() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mode == ViewingDetail {
		l.mode = Browsing
	}
	l.selected = 0
	l.detail = nil
}

func (l *PredictionsList) View() PredictionsView {
	snap := l.list.Snapshot()
	v := PredictionsView{
		Loading: snap.Loading(),
		Error:   snap.Error,
		Rows:    make([]PredictionRow, 0, len(snap.Data)),
	}
	for _, p := range snap.Data {
		v.Rows = append(v.Rows, predictionRow(p))
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
	if v.Detail != nil && v.Detail.Record != nil {
		v.Result = ResultText(v.Detail.Record.PredictionResult)
	}
	return v
}
