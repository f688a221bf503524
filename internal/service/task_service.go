package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"achieveTracker/internal/logger"
	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/task"
	rep "achieveTracker/internal/repository"
)

// здесь происходит проверка ошибок бизнес-логики

// TaskService работает только с локальным хранилищем:
// удалённую копию догоняет движок синхронизации.
type TaskService struct {
	repo rep.TaskRepository
}

func NewTaskService(repo rep.TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) CreateNewTask(ctx context.Context, userID int64, title, description string, dueDate dates.Date, important, urgent bool) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "пустой заголовок")
	}

	// Даты в UTC: календарь отметок и расчёт "сегодня" тоже в UTC.
	now := time.Now().UTC()
	t := &task.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		IsImportant: important,
		IsUrgent:    urgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена",
				zap.Int64("user_id", userID),
				zap.Uint("target_id", id))
			return nil, NewNotFound(ResourceTask, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) GetAllTasks(ctx context.Context, userID int64) ([]*task.Task, error) {
	tasks, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// GetTasksByQuadrant возвращает активные задачи одного квадранта матрицы.
func (s *TaskService) GetTasksByQuadrant(ctx context.Context, userID int64, q task.Quadrant) ([]*task.Task, error) {
	tasks, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Quadrant() == q {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetTodayTasks — незавершённые задачи со сроком сегодня или раньше.
func (s *TaskService) GetTodayTasks(ctx context.Context, userID int64, today dates.Date) ([]*task.Task, error) {
	tasks, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted || t.DueDate.IsZero() {
			continue
		}
		if !t.DueDate.After(today) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// GetOverdueTasks — незавершённые задачи со сроком строго раньше сегодня.
func (s *TaskService) GetOverdueTasks(ctx context.Context, userID int64, today dates.Date) ([]*task.Task, error) {
	tasks, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsOverdue(today) {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (s *TaskService) SearchTasks(ctx context.Context, userID int64, query string) ([]*task.Task, error) {
	if query == "" {
		return nil, NewValidationError("q", "пустой поисковый запрос")
	}
	tasks, err := s.repo.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("поиск задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) UpdateTaskByID(ctx context.Context, userID int64, id uint, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена",
				zap.Int64("user_id", userID),
				zap.Uint("target_id", id))
			return nil, NewNotFound(ResourceTask, id)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return t, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	return s.UpdateTaskByID(ctx, userID, id, task.WithCompleted(true))
}

func (s *TaskService) ReopenTask(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	return s.UpdateTaskByID(ctx, userID, id, task.WithCompleted(false))
}

// DeleteTaskByID ставит томбстоун; физически запись вычистит движок
// синхронизации после подтверждения сервером.
func (s *TaskService) DeleteTaskByID(ctx context.Context, userID int64, id uint) error {
	err := s.repo.MarkDeleted(ctx, userID, id)
	if errors.Is(err, rep.ErrNotFound) {
		return NewNotFound(ResourceTask, id)
	}
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
