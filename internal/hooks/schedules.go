package hooks

import (
	"context"

	"github.com/evmarket/analytics-console/internal/fetch"
	"github.com/evmarket/analytics-console/internal/model"
)

// ScheduleUpdate replaces the definition of a schedule.
type ScheduleUpdate struct {
	ID      int64
	Request model.ScheduleRequest
}

// ScheduleManager lists the caller's schedules. Every successful write is
// followed by a reload of the list.
type ScheduleManager struct {
	List *fetch.Query[[]model.Schedule]

	create *fetch.Mutation[model.ScheduleRequest, model.Schedule]
	update *fetch.Mutation[ScheduleUpdate, model.Schedule]
	toggle *fetch.Mutation[int64, model.Schedule]
	remove *fetch.Mutation[int64, struct{}]
}

func (f *Factory) Schedules(opts ...fetch.Option) *ScheduleManager {
	o := f.opts(opts)
	return &ScheduleManager{
		List:   fetch.NewQuery[[]model.Schedule]("schedules", f.svc.MySchedules, o...),
		create: fetch.NewMutation[model.ScheduleRequest, model.Schedule]("create schedule", f.svc.CreateSchedule, o...),
		update: fetch.NewMutationFunc("update schedule", func(ctx context.Context, u ScheduleUpdate) (model.Schedule, error) {
			var out model.Schedule
			resp, err := f.svc.UpdateSchedule(ctx, u.ID, u.Request)
			if err != nil {
				return out, err
			}
			if len(resp.Body) > 0 {
				err = resp.JSON(&out)
			}
			return out, err
		}, o...),
		toggle: fetch.NewMutation[int64, model.Schedule]("toggle schedule", f.svc.ToggleSchedule, o...),
		remove: fetch.NewAction("delete schedule", f.svc.DeleteSchedule, o...),
	}
}

// Mount loads the list.
func (m *ScheduleManager) Mount(ctx context.Context) error {
	return m.List.Mount(ctx)
}

func (m *ScheduleManager) Create(ctx context.Context, req model.ScheduleRequest) (model.Schedule, error) {
	out, err := m.create.Mutate(ctx, req)
	if err != nil {
		return out, err
	}
	m.List.Refetch(ctx)
	return out, nil
}

func (m *ScheduleManager) Update(ctx context.Context, id int64, req model.ScheduleRequest) (model.Schedule, error) {
	out, err := m.update.Mutate(ctx, ScheduleUpdate{ID: id, Request: req})
	if err != nil {
		return out, err
	}
	m.List.Refetch(ctx)
	return out, nil
}

// Toggle pauses or resumes a schedule.
func (m *ScheduleManager) Toggle(ctx context.Context, id int64) (model.Schedule, error) {
	out, err := m.toggle.Mutate(ctx, id)
	if err != nil {
		return out, err
	}
	m.List.Refetch(ctx)
	return out, nil
}

func (m *ScheduleManager) Delete(ctx context.Context, id int64) error {
	if _, err := m.remove.Mutate(ctx, id); err != nil {
		return err
	}
	m.List.Refetch(ctx)
	return nil
}

// Loading reports whether the list or any write is in flight.
func (m *ScheduleManager) Loading() bool {
	return m.List.Loading() || m.create.Loading() || m.update.Loading() || m.toggle.Loading() || m.remove.Loading()
}

// Err returns the first error among the writes and the list.
func (m *ScheduleManager) Err() string {
	for _, e := range []string{m.create.Err(), m.update.Err(), m.toggle.Err(), m.remove.Err(), m.List.Err()} {
		if e != "" {
			return e
		}
	}
	return ""
}
