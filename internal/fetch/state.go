// Package fetch implements the request state machines behind every data
// hook: a read Query and a write Mutation, each owning a single private
// state slot.
//
// Every invocation takes a sequence number. Only the response to the most
// recently issued invocation may update the slot; older responses are
// discarded whatever order they arrive in.
package fetch

import (
	"errors"
	"log/slog"

	"github.com/evmarket/analytics-console/internal/transport"
)

// State is the lifecycle of a hook.
type State int

const (
	Idle State = iota
	Loading
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StaleObserver is told when a response was dropped because a newer
// invocation of the same hook had been issued.
type StaleObserver interface {
	StaleDiscarded(hook string)
}

type settings struct {
	fallback string
	enabled  bool
	onChange func()
	stale    StaleObserver
}

// Option configures a Query or Mutation.
type Option func(*settings)

// WithFallback sets the error text used when the failure carries no
// server message.
func WithFallback(msg string) Option {
	return func(s *settings) { s.fallback = msg }
}

// WithEnabled controls whether Mount fetches. Hooks whose required
// parameters are missing are created disabled.
func WithEnabled(enabled bool) Option {
	return func(s *settings) { s.enabled = enabled }
}

// WithOnChange registers a listener called after every state change.
func WithOnChange(fn func()) Option {
	return func(s *settings) { s.onChange = fn }
}

// WithStaleObserver reports discarded responses to obs.
func WithStaleObserver(obs StaleObserver) Option {
	return func(s *settings) { s.stale = obs }
}

func newSettings(fallback string, opts []Option) settings {
	s := settings{
		fallback: fallback,
		enabled:  true,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func (s settings) discard(hook string, seq uint64) {
	slog.Debug("discarding stale response", "hook", hook, "seq", seq)
	if s.stale != nil {
		s.stale.StaleDiscarded(hook)
	}
}

// Message normalizes err for display: the server-supplied message when
// there is one, the fallback for any other backend answer, and the error
// text for failures that never reached the backend.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := transport.ServerMessage(err); msg != "" {
		return msg
	}
	var te *transport.Error
	if errors.As(err, &te) && te.StatusCode != 0 {
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
