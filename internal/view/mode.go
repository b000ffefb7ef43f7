// Package view holds the list, detail and form state machines of the
// analytics console and the provider analytics page that composes them.
package view

import (
	"context"
	"errors"
	"fmt"
)

// Mode is what a list component is currently showing.
type Mode int

const (
	Browsing Mode = iota
	Creating
	ViewingDetail
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "browsing"
	case Creating:
		return "creating"
	case ViewingDetail:
		return "viewing-detail"
	default:
		return "unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "browsing":
		*m = Browsing
	case "creating":
		*m = Creating
	case "viewing-detail":
		*m = ViewingDetail
	default:
		return fmt.Errorf("unknown mode %q", b)
	}
	return nil
}

var (
	// ErrInvalidDatasetID is returned when a form's dataset id is not an integer.
	ErrInvalidDatasetID = errors.New("dataset id must be a number")
	// ErrDemoData is returned for mutations attempted on mock data.
	ErrDemoData = errors.New("cannot modify demo data")
	// ErrUnknownField is returned by SetField for fields a form does not have.
	ErrUnknownField = errors.New("unknown form field")
)

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer with a fixed answer, for callers that collected
// the confirmation up front.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool {
	return bool(c)
}
