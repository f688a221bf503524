package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	repo "achieveTracker/internal/repository"
)

// HabitStorage — хранилище привычек и истории отметок поверх SQLite.
type HabitStorage struct {
	db *gorm.DB
}

func NewHabitStorage(db *gorm.DB) *HabitStorage {
	return &HabitStorage{db: db}
}

func (s *HabitStorage) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("доступ к соединению: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *HabitStorage) Create(ctx context.Context, h *habit.Habit) error {
	start := time.Now()
	defer slowQuery("habit_create", start)

	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("добавление привычки: %w", err)
	}
	return nil
}

func (s *HabitStorage) Update(ctx context.Context, h *habit.Habit) error {
	start := time.Now()
	defer slowQuery("habit_update", start)

	if err := s.db.WithContext(ctx).Where("user_id = ?", h.UserID).Save(h).Error; err != nil {
		return fmt.Errorf("обновление привычки: %w", err)
	}
	return nil
}

func (s *HabitStorage) GetByID(ctx context.Context, userID int64, id uint) (*habit.Habit, error) {
	var h habit.Habit
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("получение привычки: %w", err)
	}
	return &h, nil
}

func (s *HabitStorage) GetAll(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.list(ctx, s.db.Where("user_id = ?", userID))
}

func (s *HabitStorage) GetAllNonDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.list(ctx, s.db.Where("user_id = ? AND deleted = ?", userID, false))
}

func (s *HabitStorage) GetAllDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	return s.list(ctx, s.db.Where("user_id = ? AND deleted = ?", userID, true))
}

func (s *HabitStorage) Search(ctx context.Context, userID int64, query string) ([]*habit.Habit, error) {
	pattern := "%" + query + "%"
	return s.list(ctx, s.db.
		Where("user_id = ? AND deleted = ?", userID, false).
		Where("name LIKE ? OR description LIKE ?", pattern, pattern))
}

func (s *HabitStorage) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&habit.Habit{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return ids, nil
}

func (s *HabitStorage) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	res := s.db.WithContext(ctx).
		Model(&habit.Habit{}).
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

func (s *HabitStorage) ReplaceActive(ctx context.Context, userID int64, snapshot []*habit.Habit) error {
	start := time.Now()
	defer slowQuery("habit_replace_active", start)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tombstoned []int64
		if err := tx.Model(&habit.Habit{}).
			Where("user_id = ? AND deleted = ? AND remote_id != 0", userID, true).
			Pluck("remote_id", &tombstoned).Error; err != nil {
			return fmt.Errorf("выборка томбстоунов: %w", err)
		}
		dead := make(map[int64]struct{}, len(tombstoned))
		for _, id := range tombstoned {
			dead[id] = struct{}{}
		}

		var activeIDs []uint
		if err := tx.Model(&habit.Habit{}).
			Where("user_id = ? AND deleted = ?", userID, false).
			Pluck("id", &activeIDs).Error; err != nil {
			return fmt.Errorf("выборка активных привычек: %w", err)
		}

		if len(activeIDs) > 0 {
			// История отметок уходит вместе с заменяемыми строками:
			// у строк снимка новые локальные id, привязывать её не к чему.
			if err := tx.Where("habit_id IN ?", activeIDs).
				Delete(&habit.Completion{}).Error; err != nil {
				return fmt.Errorf("очистка отметок: %w", err)
			}
			if err := tx.Where("id IN ?", activeIDs).
				Delete(&habit.Habit{}).Error; err != nil {
				return fmt.Errorf("очистка активных привычек: %w", err)
			}
		}

		for _, h := range snapshot {
			if _, skip := dead[h.RemoteID]; skip {
				continue
			}
			fresh := *h
			fresh.ID = 0
			fresh.UserID = userID
			if err := tx.Create(&fresh).Error; err != nil {
				return fmt.Errorf("вставка снимка: %w", err)
			}
		}
		return nil
	})
}

func (s *HabitStorage) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&habit.Habit{}).
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

func (s *HabitStorage) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id IN ?", ids).
			Delete(&habit.Completion{}).Error; err != nil {
			return fmt.Errorf("удаление отметок: %w", err)
		}
		if err := tx.Where("user_id = ? AND deleted = ? AND id IN ?", userID, true, ids).
			Delete(&habit.Habit{}).Error; err != nil {
			return fmt.Errorf("полное удаление: %w", err)
		}
		return nil
	})
}

func (s *HabitStorage) UpdateStreaks(ctx context.Context, userID int64, id uint, current, longest int) error {
	res := s.db.WithContext(ctx).
		Model(&habit.Habit{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(map[string]any{
			"current_streak": current,
			"longest_streak": longest,
		})
	if res.Error != nil {
		return fmt.Errorf("сохранение серий: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *HabitStorage) SetCompletion(ctx context.Context, habitID uint, date dates.Date, done bool) error {
	c := habit.Completion{HabitID: habitID, Date: date, IsCompleted: done}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed"}),
		}).
		Create(&c).Error
	if err != nil {
		return fmt.Errorf("запись отметки: %w", err)
	}
	return nil
}

func (s *HabitStorage) IsCompletedOn(ctx context.Context, habitID uint, date dates.Date) (bool, error) {
	var c habit.Completion
	err := s.db.WithContext(ctx).
		Where("habit_id = ? AND date = ?", habitID, date).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("чтение отметки: %w", err)
	}
	return c.IsCompleted, nil
}

func (s *HabitStorage) GetCompletionsInRange(ctx context.Context, habitID uint, from, to dates.Date) ([]habit.Completion, error) {
	start := time.Now()
	defer slowQuery("completions_range", start)

	var res []habit.Completion
	err := s.db.WithContext(ctx).
		Where("habit_id = ? AND date >= ? AND date <= ?", habitID, from, to).
		Order("date").
		Find(&res).Error
	if err != nil {
		return nil, fmt.Errorf("получение отметок: %w", err)
	}
	return res, nil
}

func (s *HabitStorage) list(ctx context.Context, query *gorm.DB) ([]*habit.Habit, error) {
	start := time.Now()
	defer slowQuery("habit_list", start)

	var habits []*habit.Habit
	if err := query.WithContext(ctx).Order("id").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("получение привычек: %w", err)
	}
	return habits, nil
}
