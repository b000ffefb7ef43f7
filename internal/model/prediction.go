package model

import "encoding/json"

// PredictionType is the model family of an AI prediction.
type PredictionType string

const (
	PredictionBatteryDegradation PredictionType = "BATTERY_DEGRADATION"
	PredictionRangeEstimation    PredictionType = "RANGE_ESTIMATION"
	PredictionChargingTime       PredictionType = "CHARGING_TIME"
	PredictionEnergyConsumption  PredictionType = "ENERGY_CONSUMPTION"
	PredictionMaintenance        PredictionType = "MAINTENANCE_PREDICTION"
)

// PredictionTypes lists the prediction categories offered by the create form.
var PredictionTypes = []PredictionType{
	PredictionBatteryDegradation,
	PredictionRangeEstimation,
	PredictionChargingTime,
	PredictionEnergyConsumption,
	PredictionMaintenance,
}

// DefaultModelVersion is preselected by the prediction form.
const DefaultModelVersion = "v1.0"

// Prediction is an AI prediction task owned by the backend.
type Prediction struct {
	ID               int64           `json:"id"`
	PredictionType   PredictionType  `json:"predictionType"`
	DatasetID        int64           `json:"datasetId"`
	ModelVersion     string          `json:"modelVersion,omitempty"`
	Status           Status          `json:"status"`
	Confidence       *float64        `json:"confidence,omitempty"`
	InputData        json.RawMessage `json:"inputData,omitempty"`
	PredictionResult json.RawMessage `json:"predictionResult,omitempty"`
	CreatedAt        Timestamp       `json:"createdAt"`
	CompletedAt      *Timestamp      `json:"completedAt,omitempty"`
}

// CreatePredictionRequest is the body of the prediction creation endpoint.
type CreatePredictionRequest struct {
	PredictionType PredictionType `json:"predictionType"`
	DatasetID      int64          `json:"datasetId"`
	InputData      map[string]any `json:"inputData"`
	ModelVersion   string         `json:"modelVersion"`
}
