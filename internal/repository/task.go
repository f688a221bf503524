package repository

import (
	"context"

	"achieveTracker/internal/models/task"
)

// TaskRepository — контракт локального хранилища задач.
// Все выборки строго в рамках одного userID.
type TaskRepository interface {
	HealthCheck(ctx context.Context) error

	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, userID int64, id uint) (*task.Task, error)

	GetAll(ctx context.Context, userID int64) ([]*task.Task, error)
	GetAllNonDeleted(ctx context.Context, userID int64) ([]*task.Task, error)
	GetAllDeleted(ctx context.Context, userID int64) ([]*task.Task, error)
	Search(ctx context.Context, userID int64, query string) ([]*task.Task, error)
	ListUserIDs(ctx context.Context) ([]int64, error)

	// SetRemoteID записывает id, выданный удалённым хранилищем при create.
	SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error

	// ReplaceActive атомарно заменяет все незатомбленные записи пользователя
	// снимком с удалённого хранилища. Томбстоуны сохраняются; строки снимка,
	// чей remoteID совпадает с живым томбстоуном, пропускаются.
	ReplaceActive(ctx context.Context, userID int64, snapshot []*task.Task) error

	// MarkDeleted ставит томбстоун (первая фаза двухфазного удаления).
	MarkDeleted(ctx context.Context, userID int64, id uint) error
	// PurgeDeleted физически удаляет подтверждённые томбстоуны.
	PurgeDeleted(ctx context.Context, userID int64, ids []uint) error
}
