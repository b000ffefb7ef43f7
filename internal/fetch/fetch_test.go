package fetch

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/evmarket/analytics-console/internal/transport"
)

type staleCounter struct {
	mu    sync.Mutex
	hooks []string
}

func (s *staleCounter) StaleDiscarded(hook string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

func jsonCall(body string) Call {
	return func(context.Context) (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
}

func failingCall(err error) Call {
	return func(context.Context) (*transport.Response, error) {
		return nil, err
	}
}

type item struct {
	ID int64 `json:"id"`
}

func TestQuerySuccess(t *testing.T) {
	var states []State
	var q *Query[[]item]
	q = NewQuery[[]item]("reports", jsonCall(`[{"id":1},{"id":2}]`), WithOnChange(func() {
		states = append(states, q.State())
	}))

	if q.State() != Idle {
		t.Fatalf("expected idle before mount, got %s", q.State())
	}
	if err := q.Mount(context.Background()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	if len(states) != 2 || states[0] != Loading || states[1] != Success {
		t.Errorf("expected loading then success, got %v", states)
	}
	snap := q.Snapshot()
	if len(snap.Data) != 2 || snap.Data[1].ID != 2 {
		t.Errorf("unexpected data %+v", snap.Data)
	}
	if snap.Error != "" {
		t.Errorf("expected no error, got %q", snap.Error)
	}
}

func TestQueryFailureKeepsPriorData(t *testing.T) {
	fail := false
	q := NewQuery[[]item]("reports", func(ctx context.Context) (*transport.Response, error) {
		if fail {
			return nil, &transport.Error{Endpoint: "reports.mine", StatusCode: 400, Message: "Dataset not found"}
		}
		return jsonCall(`[{"id":1}]`)(ctx)
	})

	q.Mount(context.Background())
	fail = true
	err := q.Refetch(context.Background())
	if err == nil {
		t.Fatal("expected error from Refetch")
	}

	if q.State() != Failed {
		t.Errorf("expected error state, got %s", q.State())
	}
	if got := q.Data(); len(got) != 1 || got[0].ID != 1 {
		t.Errorf("expected prior data to be kept, got %+v", got)
	}
	if q.Err() != "Dataset not found" {
		t.Errorf("expected server message, got %q", q.Err())
	}
	if q.Cause() != err {
		t.Error("expected raw cause to be kept")
	}
}

func TestQueryFailureFallback(t *testing.T) {
	q := NewQuery[[]item]("reports", failingCall(&transport.Error{Endpoint: "reports.mine", StatusCode: 500}))
	q.Mount(context.Background())

	if q.Err() != "Failed to load reports" {
		t.Errorf("expected generic fallback, got %q", q.Err())
	}
	if q.Data() != nil {
		t.Errorf("expected initial empty data, got %+v", q.Data())
	}

	custom := NewQuery[[]item]("reports", failingCall(&transport.Error{StatusCode: 502}), WithFallback("Reports are unavailable"))
	custom.Mount(context.Background())
	if custom.Err() != "Reports are unavailable" {
		t.Errorf("expected custom fallback, got %q", custom.Err())
	}
}

func TestQueryNetworkFailureMessage(t *testing.T) {
	q := NewQuery[[]item]("insights", failingCall(&transport.Error{Endpoint: "insights.active", Err: errors.New("connection refused")}))
	q.Mount(context.Background())

	if q.Err() != "insights.active: connection refused" {
		t.Errorf("expected transport message, got %q", q.Err())
	}
}

func TestQueryErrorClearedOnSuccess(t *testing.T) {
	fail := true
	q := NewQuery[item]("report", func(ctx context.Context) (*transport.Response, error) {
		if fail {
			return nil, &transport.Error{StatusCode: 500}
		}
		return jsonCall(`{"id":9}`)(ctx)
	})
	q.Mount(context.Background())
	fail = false
	q.Refetch(context.Background())

	if q.Err() != "" {
		t.Errorf("expected error cleared, got %q", q.Err())
	}
	if q.Data().ID != 9 {
		t.Errorf("expected id 9, got %d", q.Data().ID)
	}
}

func TestQueryLoadingClearsPreviousError(t *testing.T) {
	fail := true
	var q *Query[[]item]
	var loading []Snapshot[[]item]
	q = NewQuery[[]item]("insights", func(ctx context.Context) (*transport.Response, error) {
		if fail {
			return nil, &transport.Error{StatusCode: 500, Message: "boom"}
		}
		return jsonCall(`[{"id":3}]`)(ctx)
	}, WithOnChange(func() {
		if snap := q.Snapshot(); snap.State == Loading {
			loading = append(loading, snap)
		}
	}))

	q.Mount(context.Background())
	if q.Err() != "boom" {
		t.Fatalf("expected error boom, got %q", q.Err())
	}
	fail = false
	q.Refetch(context.Background())

	if len(loading) != 2 {
		t.Fatalf("expected 2 loading snapshots, got %d", len(loading))
	}
	if loading[1].Error != "" {
		t.Errorf("expected empty error while loading, got %q", loading[1].Error)
	}
	if q.Cause() != nil {
		t.Errorf("expected cause cleared, got %v", q.Cause())
	}
}

func TestQueryDisabledMount(t *testing.T) {
	calls := 0
	q := NewQuery[item]("report", func(ctx context.Context) (*transport.Response, error) {
		calls++
		return jsonCall(`{"id":1}`)(ctx)
	}, WithEnabled(false))

	q.Mount(context.Background())
	if calls != 0 {
		t.Errorf("disabled query should not fetch on mount, got %d calls", calls)
	}
	if q.State() != Idle {
		t.Errorf("expected idle, got %s", q.State())
	}

	q.Refetch(context.Background())
	if calls != 1 {
		t.Errorf("refetch should always fetch, got %d calls", calls)
	}
}

func TestPagedQuery(t *testing.T) {
	q := NewPagedQuery[item]("trending insights", jsonCall(`{"content":[{"id":3}],"totalPages":4,"totalElements":31,"number":0,"size":10}`))
	q.Mount(context.Background())

	if q.TotalPages() != 4 {
		t.Errorf("expected 4 pages, got %d", q.TotalPages())
	}
	if got := q.Data(); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("unexpected content %+v", got)
	}

	empty := NewPagedQuery[item]("trending insights", jsonCall(`{"totalPages":0}`))
	empty.Mount(context.Background())
	if empty.Data() == nil || len(empty.Data()) != 0 {
		t.Errorf("expected empty non-nil content, got %#v", empty.Data())
	}
}

func TestQueryOutOfOrderResponses(t *testing.T) {
	type pending struct {
		release chan struct{}
		value   int64
	}
	calls := make(chan pending, 2)
	started := make(chan struct{}, 2)

	stale := &staleCounter{}
	q := NewQueryFunc[int64]("reports", func(ctx context.Context) (int64, int, error) {
		p := <-calls
		started <- struct{}{}
		<-p.release
		return p.value, 0, nil
	}, WithStaleObserver(stale))

	first := pending{release: make(chan struct{}), value: 1}
	second := pending{release: make(chan struct{}), value: 2}

	firstDone := make(chan struct{})
	secondDone := make(chan struct{})
	calls <- first
	go func() { defer close(firstDone); q.Refetch(context.Background()) }()
	<-started
	calls <- second
	go func() { defer close(secondDone); q.Refetch(context.Background()) }()
	<-started

	// The newer request answers first, the older one last.
	close(second.release)
	<-secondDone
	if q.Data() != 2 {
		t.Fatalf("expected newer response to be applied, got %d", q.Data())
	}
	close(first.release)
	<-firstDone

	if q.Data() != 2 {
		t.Errorf("expected latest response to win, got %d", q.Data())
	}
	if q.State() != Success {
		t.Errorf("expected success, got %s", q.State())
	}
	if len(stale.hooks) != 1 || stale.hooks[0] != "reports" {
		t.Errorf("expected one discarded response, got %v", stale.hooks)
	}
}

func TestMutation(t *testing.T) {
	var sent int64
	m := NewMutation[int64, item]("create report", func(_ context.Context, id int64) (*transport.Response, error) {
		sent = id
		return &transport.Response{StatusCode: http.StatusCreated, Body: []byte(`{"id":11}`)}, nil
	})

	out, err := m.Mutate(context.Background(), 42)
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if sent != 42 {
		t.Errorf("expected input 42, got %d", sent)
	}
	if out.ID != 11 || m.Result().ID != 11 {
		t.Errorf("expected result id 11, got %+v", out)
	}
	if m.State() != Success {
		t.Errorf("expected success, got %s", m.State())
	}
}

func TestMutationErrorIsReturned(t *testing.T) {
	m := NewMutation[int64, item]("create report", func(context.Context, int64) (*transport.Response, error) {
		return nil, &transport.Error{StatusCode: 500}
	})

	_, err := m.Mutate(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if m.Err() != "Failed to create report" {
		t.Errorf("expected fallback message, got %q", m.Err())
	}
	if m.State() != Failed {
		t.Errorf("expected error state, got %s", m.State())
	}
}

func TestMutationEmptyBody(t *testing.T) {
	m := NewMutation[int64, item]("toggle schedule", func(context.Context, int64) (*transport.Response, error) {
		return &transport.Response{StatusCode: http.StatusNoContent}, nil
	})
	out, err := m.Mutate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if out.ID != 0 {
		t.Errorf("expected zero result, got %+v", out)
	}
}

func TestAction(t *testing.T) {
	calls := 0
	a := NewAction("delete report", func(context.Context, int64) (*transport.Response, error) {
		calls++
		return &transport.Response{Body: []byte("Deleted")}, nil
	})
	if _, err := a.Mutate(context.Background(), 3); err != nil {
		t.Fatalf("action failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one call, got %d", calls)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server message", &transport.Error{StatusCode: 422, Message: "invalid"}, "invalid"},
		{"status only", &transport.Error{StatusCode: 500}, "fallback"},
		{"local", errors.New("decoding response: empty body"), "decoding response: empty body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, "fallback"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
