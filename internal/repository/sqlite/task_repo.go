package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"achieveTracker/internal/models/task"
	repo "achieveTracker/internal/repository"
)

// TaskStorage — хранилище задач поверх SQLite.
type TaskStorage struct {
	db *gorm.DB
}

func NewTaskStorage(db *gorm.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("доступ к соединению: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer slowQuery("task_create", start)

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer slowQuery("task_update", start)

	res := s.db.WithContext(ctx).
		Where("user_id = ?", t.UserID).
		Save(t)
	if res.Error != nil {
		return fmt.Errorf("обновление задачи: %w", res.Error)
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	var t task.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return &t, nil
}

func (s *TaskStorage) GetAll(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.list(ctx, s.db.Where("user_id = ?", userID))
}

func (s *TaskStorage) GetAllNonDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.list(ctx, s.db.Where("user_id = ? AND deleted = ?", userID, false))
}

func (s *TaskStorage) GetAllDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	return s.list(ctx, s.db.Where("user_id = ? AND deleted = ?", userID, true))
}

func (s *TaskStorage) Search(ctx context.Context, userID int64, query string) ([]*task.Task, error) {
	pattern := "%" + query + "%"
	return s.list(ctx, s.db.
		Where("user_id = ? AND deleted = ?", userID, false).
		Where("title LIKE ? OR description LIKE ?", pattern, pattern))
}

func (s *TaskStorage) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&task.Task{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return ids, nil
}

func (s *TaskStorage) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	res := s.db.WithContext(ctx).
		Model(&task.Task{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("remote_id", remoteID)
	if res.Error != nil {
		return fmt.Errorf("запись remote_id: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) ReplaceActive(ctx context.Context, userID int64, snapshot []*task.Task) error {
	start := time.Now()
	defer slowQuery("task_replace_active", start)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tombstoned []int64
		if err := tx.Model(&task.Task{}).
			Where("user_id = ? AND deleted = ? AND remote_id != 0", userID, true).
			Pluck("remote_id", &tombstoned).Error; err != nil {
			return fmt.Errorf("выборка томбстоунов: %w", err)
		}
		dead := make(map[int64]struct{}, len(tombstoned))
		for _, id := range tombstoned {
			dead[id] = struct{}{}
		}

		if err := tx.
			Where("user_id = ? AND deleted = ?", userID, false).
			Delete(&task.Task{}).Error; err != nil {
			return fmt.Errorf("очистка активных задач: %w", err)
		}

		for _, t := range snapshot {
			if _, skip := dead[t.RemoteID]; skip {
				continue
			}
			fresh := *t
			fresh.ID = 0
			fresh.UserID = userID
			if err := tx.Create(&fresh).Error; err != nil {
				return fmt.Errorf("вставка снимка: %w", err)
			}
		}
		return nil
	})
}

func (s *TaskStorage) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&task.Task{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("deleted", true)
	if res.Error != nil {
		return fmt.Errorf("мягкое удаление: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *TaskStorage) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ? AND id IN ?", userID, true, ids).
		Delete(&task.Task{}).Error
	if err != nil {
		return fmt.Errorf("полное удаление: %w", err)
	}
	return nil
}

func (s *TaskStorage) list(ctx context.Context, query *gorm.DB) ([]*task.Task, error) {
	start := time.Now()
	defer slowQuery("task_list", start)

	var tasks []*task.Task
	if err := query.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}
