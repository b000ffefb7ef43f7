package model

import "encoding/json"

// Dashboard is a saved arrangement of analytics widgets.
type Dashboard struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Layout      json.RawMessage `json:"layout,omitempty"`
	Widgets     json.RawMessage `json:"widgets,omitempty"`
	IsPublic    bool            `json:"isPublic"`
	CreatedAt   *Timestamp      `json:"createdAt,omitempty"`
	UpdatedAt   *Timestamp      `json:"updatedAt,omitempty"`
}

// DashboardRequest creates or replaces a dashboard.
type DashboardRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Layout      json.RawMessage `json:"layout,omitempty"`
	Widgets     json.RawMessage `json:"widgets,omitempty"`
	IsPublic    bool            `json:"isPublic"`
}
