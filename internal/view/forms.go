package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/hooks"
	"github.com/evmarket/analytics-console/internal/model"
)

// ReportFields are the editable values of the report creation form. The
// dataset id is kept as typed and converted on submit.
type ReportFields struct {
	ReportType  string `json:"reportType"`
	DatasetID   string `json:"datasetId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func emptyReportFields() ReportFields {
	return ReportFields{ReportType: string(model.ReportBatteryHealth)}
}

// PredictionFields are the editable values of the prediction creation form.
type PredictionFields struct {
	PredictionType string `json:"predictionType"`
	DatasetID      string `json:"datasetId"`
	ModelVersion   string `json:"modelVersion"`
}

func emptyPredictionFields() PredictionFields {
	return PredictionFields{
		PredictionType: string(model.PredictionBatteryDegradation),
		ModelVersion:   model.DefaultModelVersion,
	}
}

func parseDatasetID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDatasetID)
	}
	return id, nil
}

// FormView is a snapshot of a create form.
type FormView[F any] struct {
	Fields     F      `json:"fields"`
	Submitting bool   `json:"submitting"`
	Error      string `json:"error,omitempty"`
}

// CreateReportForm is the standalone report creation form. After a
// successful submit the fields reset and onSuccess runs.
type CreateReportForm struct {
	create    *fetch.Mutation[model.CreateReportRequest, model.Report]
	onSuccess func(ctx context.Context)

	mu       sync.Mutex
	fields   ReportFields
	localErr string
}

func NewCreateReportForm(f *hooks.Factory, onSuccess func(ctx context.Context)) *CreateReportForm {
	return &CreateReportForm{
		create:    f.CreateReport(),
		onSuccess: onSuccess,
		fields:    emptyReportFields(),
	}
}

// SetField updates one field by its JSON name.
func (c *CreateReportForm) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "reportType":
		c.fields.ReportType = value
	case "datasetId":
		c.fields.DatasetID = value
	case "title":
		c.fields.Title = value
	case "description":
		c.fields.Description = value
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	return nil
}

// Fill replaces every field at once.
func (c *CreateReportForm) Fill(fields ReportFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = fields
}

// Submit creates the report. A dataset id that is not an integer fails
// locally with ErrInvalidDatasetID and nothing is sent.
func (c *CreateReportForm) Submit(ctx context.Context) (model.Report, error) {
	c.mu.Lock()
	fields := c.fields
	c.mu.Unlock()

	datasetID, err := parseDatasetID(fields.DatasetID)
	if err != nil {
		c.setLocalErr(err.Error())
		return model.Report{}, err
	}
	c.setLocalErr("")

	report, err := c.create.Mutate(ctx, model.CreateReportRequest{
		ReportType:  model.ReportType(fields.ReportType),
		DatasetID:   datasetID,
		Title:       fields.Title,
		Description: fields.Description,
		Parameters:  map[string]any{},
	})
	if err != nil {
		return report, err
	}

	c.Reset()
	if c.onSuccess != nil {
		c.onSuccess(ctx)
	}
	return report, nil
}

// Reset restores the initial field values.
func (c *CreateReportForm) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = emptyReportFields()
	c.localErr = ""
}

func (c *CreateReportForm) setLocalErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localErr = msg
}

func (c *CreateReportForm) View() FormView[ReportFields] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := FormView[ReportFields]{
		Fields:     c.fields,
		Submitting: c.create.Loading(),
		Error:      c.localErr,
	}
	if v.Error == "" {
		v.Error = c.create.Err()
	}
	return v
}

// CreatePredictionForm is the standalone prediction creation form.
type CreatePredictionForm struct {
	create    *fetch.Mutation[model.CreatePredictionRequest, model.Prediction]
	onSuccess func(ctx context.Context)

	mu       sync.Mutex
	fields   PredictionFields
	localErr string
}

func NewCreatePredictionForm(f *hooks.Factory, onSuccess func(ctx context.Context)) *CreatePredictionForm {
	return &CreatePredictionForm{
		create:    f.CreatePrediction(),
		onSuccess: onSuccess,
		fields:    emptyPredictionFields(),
	}
}

func (c *CreatePredictionForm) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case "predictionType":
		c.fields.PredictionType = value
	case "datasetId":
		c.fields.DatasetID = value
	case "modelVersion":
		c.fields.ModelVersion = value
	default:
		return fmt.Errorf("%s: %w", name, ErrUnknownField)
	}
	return nil
}

func (c *CreatePredictionForm) Fill(fields PredictionFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fields.ModelVersion == "" {
		fields.ModelVersion = model.DefaultModelVersion
	}
	c.fields = fields
}

// Submit creates the prediction. See CreateReportForm.Submit.
func (c *CreatePredictionForm) Submit(ctx context.Context) (model.Prediction, error) {
	c.mu.Lock()
	fields := c.fields
	c.mu.Unlock()

	datasetID, err := parseDatasetID(fields.DatasetID)
	if err != nil {
		c.setLocalErr(err.Error())
		return model.Prediction{}, err
	}
	c.setLocalErr("")

	prediction, err := c.create.Mutate(ctx, model.CreatePredictionRequest{
		PredictionType: model.PredictionType(fields.PredictionType),
		DatasetID:      datasetID,
		InputData:      map[string]any{},
		ModelVersion:   fields.ModelVersion,
	})
	if err != nil {
		return prediction, err
	}

	c.Reset()
	if c.onSuccess != nil {
		c.onSuccess(ctx)
	}
	return prediction, nil
}

func (c *CreatePredictionForm) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = emptyPredictionFields()
	c.localErr = ""
}

func (c *CreatePredictionForm) setLocalErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localErr = msg
}

func (c *CreatePredictionForm) View() FormView[PredictionFields] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := FormView[PredictionFields]{
		Fields:     c.fields,
		Submitting: c.create.Loading(),
		Error:      c.localErr,
	}
	if v.Error == "" {
		v.Error = c.create.Err()
	}
	return v
}
