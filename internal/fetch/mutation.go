package fetch

import (
	"bytes"
	"context"
	"sync"

	"github.com/evmarket/analytics-console/internal/transport"
)

// MutateFunc performs a write and produces its result.
type MutateFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// Mutation is a write hook: {mutate, loading, error}.
type Mutation[In, Out any] struct {
	name   string
	mutate MutateFunc[In, Out]
	cfg    settings

	mu     sync.Mutex
	seq    uint64
	state  State
	result Out
	errMsg string
}

// NewMutationFunc creates a Mutation around fn.
func NewMutationFunc[In, Out any](name string, fn MutateFunc[In, Out], opts ...Option) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		name:   name,
		mutate: fn,
		cfg:    newSettings("Failed to "+name, opts),
	}
}

// NewMutation creates a Mutation whose result is the JSON body of the
// response. An empty body yields the zero value.
func NewMutation[In, Out any](name string, call func(ctx context.Context, in In) (*transport.Response, error), opts ...Option) *Mutation[In, Out] {
	return NewMutationFunc(name, func(ctx context.Context, in In) (Out, error) {
		var out Out
		resp, err := call(ctx, in)
		if err != nil {
			return out, err
		}
		if len(bytes.TrimSpace(resp.Body)) == 0 {
			return out, nil
		}
		if err := resp.JSON(&out); err != nil {
			return out, err
		}
		return out, nil
	}, opts...)
}

// NewAction creates a Mutation that ignores the response body, for
// deletes and toggles whose answer carries nothing the caller needs.
func NewAction[In any](name string, call func(ctx context.Context, in In) (*transport.Response, error), opts ...Option) *Mutation[In, struct{}] {
	return NewMutationFunc(name, func(ctx context.Context, in In) (struct{}, error) {
		_, err := call(ctx, in)
		return struct{}{}, err
	}, opts...)
}

// Mutate runs the write. The error is stored as a normalized message and
// also returned to the caller.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.state = Loading
	m.errMsg = ""
	m.mu.Unlock()
	m.changed()

	out, err := m.mutate(ctx, in)

	m.mu.Lock()
	if seq != m.seq {
		m.mu.Unlock()
		m.cfg.discard(m.name, seq)
		return out, err
	}
	if err != nil {
		m.state = Failed
		m.errMsg = Message(err, m.cfg.fallback)
	} else {
		m.state = Success
		m.result = out
	}
	m.mu.Unlock()
	m.changed()
	return out, err
}

func (m *Mutation[In, Out]) changed() {
	if m.cfg.onChange != nil {
		m.cfg.onChange()
	}
}

func (m *Mutation[In, Out]) Name() string {
	return m.name
}

// Result returns the output of the last successful write.
func (m *Mutation[In, Out]) Result() Out {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

func (m *Mutation[In, Out]) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

func (m *Mutation[In, Out]) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mutation[In, Out]) Loading() bool {
	return m.State() == Loading
}
