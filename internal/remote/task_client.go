package remote

import (
	"context"
	"fmt"
	"net/http"

	"achieveTracker/internal/models/task"
)

// TaskAPI — удалённые операции над задачами, как их видит движок синхронизации.
type TaskAPI interface {
	List(ctx context.Context, userID int64) ([]*task.Task, error)
	Create(ctx context.Context, t *task.Task) (int64, error)
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, remoteID int64) error
}

type TasksClient struct {
	c *Client
}

func (tc *TasksClient) List(ctx context.Context, userID int64) ([]*task.Task, error) {
	var wire []*Task
	if err := tc.c.do(ctx, http.MethodGet, "/tasks", userQuery(userID), nil, &wire); err != nil {
		return nil, err
	}
	out := make([]*task.Task, 0, len(wire))
	for _, w := range wire {
		out = append(out, TaskFromWire(w))
	}
	return out, nil
}

// Create отправляет задачу без id и возвращает id, назначенный сервером.
func (tc *TasksClient) Create(ctx context.Context, t *task.Task) (int64, error) {
	body := TaskToWire(t)
	body.ID = 0

	var created Task
	if err := tc.c.do(ctx, http.MethodPost, "/tasks", nil, body, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, &TransportError{Op: "POST /tasks", Err: fmt.Errorf("сервер не назначил id")}
	}
	return created.ID, nil
}

func (tc *TasksClient) Update(ctx context.Context, t *task.Task) error {
	path := fmt.Sprintf("/tasks/%d", t.RemoteID)
	return tc.c.do(ctx, http.MethodPut, path, nil, TaskToWire(t), nil)
}

func (tc *TasksClient) Delete(ctx context.Context, remoteID int64) error {
	path := fmt.Sprintf("/tasks/%d", remoteID)
	return tc.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
