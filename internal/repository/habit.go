package repository

import (
	"context"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
)

// HabitRepository — контракт локального хранилища привычек и истории отметок.
type HabitRepository interface {
	HealthCheck(ctx context.Context) error

	Create(ctx context.Context, h *habit.Habit) error
	Update(ctx context.Context, h *habit.Habit) error
	GetByID(ctx context.Context, userID int64, id uint) (*habit.Habit, error)

	GetAll(ctx context.Context, userID int64) ([]*habit.Habit, error)
	GetAllNonDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error)
	GetAllDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error)
	Search(ctx context.Context, userID int64, query string) ([]*habit.Habit, error)
	ListUserIDs(ctx context.Context) ([]int64, error)

	SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error
	ReplaceActive(ctx context.Context, userID int64, snapshot []*habit.Habit) error

	MarkDeleted(ctx context.Context, userID int64, id uint) error
	// PurgeDeleted удаляет томбстоуны вместе с их историей отметок.
	PurgeDeleted(ctx context.Context, userID int64, ids []uint) error

	// UpdateStreaks сохраняет пересчитанный кэш серий.
	UpdateStreaks(ctx context.Context, userID int64, id uint, current, longest int) error

	// История отметок: одна запись на привычку и календарный день.
	SetCompletion(ctx context.Context, habitID uint, date dates.Date, done bool) error
	IsCompletedOn(ctx context.Context, habitID uint, date dates.Date) (bool, error)
	GetCompletionsInRange(ctx context.Context, habitID uint, from, to dates.Date) ([]habit.Completion, error)
}
