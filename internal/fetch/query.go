package fetch

import (
	"context"
	"sync"

	"github.com/evmarket/analytics-console/internal/model"
	"github.com/evmarket/analytics-console/internal/transport"
)

// Call issues one endpoint request.
type Call func(ctx context.Context) (*transport.Response, error)

// LoadFunc produces the payload of a query and, for paginated listings,
// the total page count.
type LoadFunc[T any] func(ctx context.Context) (data T, totalPages int, err error)

// Snapshot is a consistent view of a Query.
type Snapshot[T any] struct {
	State      State  `json:"state"`
	Data       T      `json:"data"`
	Error      string `json:"error,omitempty"`
	TotalPages int    `json:"totalPages,omitempty"`
}

// Loading reports whether a request is in flight.
func (s Snapshot[T]) Loading() bool {
	return s.State == Loading
}

// Query is a read hook: {data, loading, error, refetch}.
type Query[T any] struct {
	name string
	load LoadFunc[T]
	cfg  settings

	mu         sync.Mutex
	seq        uint64
	state      State
	data       T
	err        error
	errMsg     string
	totalPages int
}

// NewQueryFunc creates a Query around load.
func NewQueryFunc[T any](name string, load LoadFunc[T], opts ...Option) *Query[T] {
	return &Query[T]{
		name: name,
		load: load,
		cfg:  newSettings("Failed to load "+name, opts),
	}
}

// NewQuery creates a Query whose payload is the JSON body of call.
func NewQuery[T any](name string, call Call, opts ...Option) *Query[T] {
	return NewQueryFunc(name, func(ctx context.Context) (T, int, error) {
		var out T
		resp, err := call(ctx)
		if err != nil {
			return out, 0, err
		}
		if err := resp.JSON(&out); err != nil {
			return out, 0, err
		}
		return out, 0, nil
	}, opts...)
}

// NewPagedQuery creates a Query over a paginated listing. The payload is
// the page content; TotalPages tracks the envelope.
func NewPagedQuery[E any](name string, call Call, opts ...Option) *Query[[]E] {
	return NewQueryFunc(name, func(ctx context.Context) ([]E, int, error) {
		resp, err := call(ctx)
		if err != nil {
			return nil, 0, err
		}
		var page model.Page[E]
		if err := resp.JSON(&page); err != nil {
			return nil, 0, err
		}
		if page.Content == nil {
			page.Content = []E{}
		}
		return page.Content, page.TotalPages, nil
	}, opts...)
}

// Name returns the hook name used in logs and metrics.
func (q *Query[T]) Name() string {
	return q.name
}

// Enabled reports whether Mount fetches.
func (q *Query[T]) Enabled() bool {
	return q.cfg.enabled
}

// Mount performs the initial fetch when the query is enabled.
func (q *Query[T]) Mount(ctx context.Context) error {
	if !q.cfg.enabled {
		return nil
	}
	return q.Refetch(ctx)
}

// Refetch issues a new request. The state moves to Loading and then to
// Success or Failed, unless a newer invocation was issued meanwhile, in
// which case the response is discarded. The call's error is returned
// either way.
func (q *Query[T]) Refetch(ctx context.Context) error {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.state = Loading
	q.err = nil
	q.errMsg = ""
	q.mu.Unlock()
	q.changed()

	data, pages, err := q.load(ctx)

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		q.cfg.discard(q.name, seq)
		return err
	}
	if err != nil {
		q.state = Failed
		q.err = err
		q.errMsg = Message(err, q.cfg.fallback)
	} else {
		q.state = Success
		q.data = data
		q.err = nil
		q.errMsg = ""
		q.totalPages = pages
	}
	q.mu.Unlock()
	q.changed()
	return err
}

func (q *Query[T]) changed() {
	if q.cfg.onChange != nil {
		q.cfg.onChange()
	}
}

// Snapshot returns the current state.
func (q *Query[T]) Snapshot() Snapshot[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Snapshot[T]{
		State:      q.state,
		Data:       q.data,
		Error:      q.errMsg,
		TotalPages: q.totalPages,
	}
}

// Data returns the last successfully fetched payload.
func (q *Query[T]) Data() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data
}

// Err returns the normalized error message, or "" when the last
// completed request succeeded.
func (q *Query[T]) Err() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.errMsg
}

// Cause returns the raw error of the last failed request.
func (q *Query[T]) Cause() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

func (q *Query[T]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Query[T]) Loading() bool {
	return q.State() == Loading
}

func (q *Query[T]) TotalPages() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalPages
}
