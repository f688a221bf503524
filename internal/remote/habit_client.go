package remote

import (
	"context"
	"fmt"
	"net/http"

	"achieveTracker/internal/models/habit"
)

// HabitAPI — удалённые операции над привычками, как их видит движок синхронизации.
// История отметок на сервер не уезжает: серверная копия хранит только кэш серий.
type HabitAPI interface {
	List(ctx context.Context, userID int64) ([]*habit.Habit, error)
	Create(ctx context.Context, h *habit.Habit) (int64, error)
	Update(ctx context.Context, h *habit.Habit) error
	Delete(ctx context.Context, remoteID int64) error
}

type HabitsClient struct {
	c *Client
}

func (hc *HabitsClient) List(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	var wire []*Habit
	if err := hc.c.do(ctx, http.MethodGet, "/habits", userQuery(userID), nil, &wire); err != nil {
		return nil, err
	}
	out := make([]*habit.Habit, 0, len(wire))
	for _, w := range wire {
		out = append(out, HabitFromWire(w))
	}
	return out, nil
}

func (hc *HabitsClient) Create(ctx context.Context, h *habit.Habit) (int64, error) {
	body := HabitToWire(h)
	body.ID = 0

	var created Habit
	if err := hc.c.do(ctx, http.MethodPost, "/habits", nil, body, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, &TransportError{Op: "POST /habits", Err: fmt.Errorf("сервер не назначил id")}
	}
	return created.ID, nil
}

func (hc *HabitsClient) Update(ctx context.Context, h *habit.Habit) error {
	path := fmt.Sprintf("/habits/%d", h.RemoteID)
	return hc.c.do(ctx, http.MethodPut, path, nil, HabitToWire(h), nil)
}

func (hc *HabitsClient) Delete(ctx context.Context, remoteID int64) error {
	path := fmt.Sprintf("/habits/%d", remoteID)
	return hc.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
