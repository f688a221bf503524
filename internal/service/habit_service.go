package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"achieveTracker/internal/logger"
	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	rep "achieveTracker/internal/repository"
	"achieveTracker/internal/streak"
)

// HabitStatus — привычка вместе с отметкой за конкретный день.
type HabitStatus struct {
	Habit       *habit.Habit
	IsCompleted bool
}

// HabitService владеет привычками и историей отметок. Кэш серий
// пересчитывается при каждой смене отметки, источник истины — история.
type HabitService struct {
	repo rep.HabitRepository
	calc *streak.Calculator
}

func NewHabitService(repo rep.HabitRepository, calc *streak.Calculator) *HabitService {
	return &HabitService{
		repo: repo,
		calc: calc,
	}
}

func (s *HabitService) CreateNewHabit(ctx context.Context, userID int64, name, description string, freq habit.Frequency, reminder *habit.Reminder) (*habit.Habit, error) {
	if name == "" {
		return nil, NewValidationError("name", "пустое название")
	}
	if !freq.Valid() {
		return nil, NewValidationError("frequency", "недопустимое расписание")
	}
	if !reminder.Valid() {
		return nil, NewValidationError("reminder", "недопустимое время напоминания")
	}

	// Даты в UTC: календарь отметок и расчёт "сегодня" тоже в UTC.
	now := time.Now().UTC()
	h := &habit.Habit{
		UserID:      userID,
		Name:        name,
		Description: description,
		Reminder:    reminder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.SetFrequency(freq)

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("создание привычки: %w", err)
	}
	return h, nil
}

func (s *HabitService) GetHabitByID(ctx context.Context, userID int64, id uint) (*habit.Habit, error) {
	h, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Привычка не найдена",
				zap.Int64("user_id", userID),
				zap.Uint("target_id", id))
			return nil, NewNotFound(ResourceHabit, id)
		}
		return nil, fmt.Errorf("получение привычки: %w", err)
	}
	return h, nil
}

func (s *HabitService) GetAllHabits(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	habits, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение привычек: %w", err)
	}
	return habits, nil
}

// GetTodayHabits — привычки, подходящие расписанию на today,
// вместе с отметкой выполнения за этот день.
func (s *HabitService) GetTodayHabits(ctx context.Context, userID int64, today dates.Date) ([]HabitStatus, error) {
	habits, err := s.repo.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение привычек: %w", err)
	}

	statuses := make([]HabitStatus, 0, len(habits))
	for _, h := range habits {
		if !h.Frequency().EligibleOn(today) {
			continue
		}
		done, err := s.repo.IsCompletedOn(ctx, h.ID, today)
		if err != nil {
			return nil, fmt.Errorf("чтение отметки привычки %d: %w", h.ID, err)
		}
		statuses = append(statuses, HabitStatus{Habit: h, IsCompleted: done})
	}
	return statuses, nil
}

func (s *HabitService) SearchHabits(ctx context.Context, userID int64, query string) ([]*habit.Habit, error) {
	if query == "" {
		return nil, NewValidationError("q", "пустой поисковый запрос")
	}
	habits, err := s.repo.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("поиск привычек: %w", err)
	}
	return habits, nil
}

func (s *HabitService) UpdateHabitByID(ctx context.Context, userID int64, id uint, options ...habit.HabitOption) (*habit.Habit, error) {
	h, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Привычка не найдена",
				zap.Int64("user_id", userID),
				zap.Uint("target_id", id))
			return nil, NewNotFound(ResourceHabit, id)
		}
		return nil, fmt.Errorf("получение привычки: %w", err)
	}

	oldFreq := h.Frequency()
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	h.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("обновление привычки: %w", err)
	}

	// Смена расписания меняет множество подходящих дней,
	// и кэш серий становится недостоверным.
	if h.Frequency() != oldFreq {
		if err := s.recomputeStreaks(ctx, h, dates.Today()); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// SetCompletion записывает отметку за день и пересчитывает серии.
// Отметки принимаются только за сегодня и прошлые дни.
func (s *HabitService) SetCompletion(ctx context.Context, userID int64, id uint, date dates.Date, done bool) (*habit.Habit, error) {
	today := dates.Today()
	if date.After(today) {
		return nil, NewValidationError("date", "отметка будущим днём")
	}

	h, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceHabit, id)
		}
		return nil, fmt.Errorf("получение привычки: %w", err)
	}

	if err := s.repo.SetCompletion(ctx, id, date, done); err != nil {
		return nil, fmt.Errorf("запись отметки: %w", err)
	}
	if err := s.recomputeStreaks(ctx, h, today); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) GetCompletions(ctx context.Context, userID int64, id uint, from, to dates.Date) ([]habit.Completion, error) {
	if _, err := s.GetHabitByID(ctx, userID, id); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, NewValidationError("to", "конец диапазона раньше начала")
	}
	comps, err := s.repo.GetCompletionsInRange(ctx, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("получение отметок: %w", err)
	}
	return comps, nil
}

func (s *HabitService) DeleteHabitByID(ctx context.Context, userID int64, id uint) error {
	err := s.repo.MarkDeleted(ctx, userID, id)
	if errors.Is(err, rep.ErrNotFound) {
		return NewNotFound(ResourceHabit, id)
	}
	if err != nil {
		return fmt.Errorf("удаление привычки: %w", err)
	}
	return nil
}

func (s *HabitService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *HabitService) recomputeStreaks(ctx context.Context, h *habit.Habit, asOf dates.Date) error {
	from := asOf.AddDays(-streak.DefaultLookbackDays)
	comps, err := s.repo.GetCompletionsInRange(ctx, h.ID, from, asOf)
	if err != nil {
		return fmt.Errorf("история отметок привычки %d: %w", h.ID, err)
	}

	res := s.calc.Compute(comps, h.Frequency(), dates.FromTime(h.CreatedAt), asOf, h.LongestStreak)
	if err := s.repo.UpdateStreaks(ctx, h.UserID, h.ID, res.Current, res.Longest); err != nil {
		return fmt.Errorf("сохранение серий привычки %d: %w", h.ID, err)
	}
	h.CurrentStreak = res.Current
	h.LongestStreak = res.Longest

	logger.Info("Service: Серии пересчитаны",
		zap.Uint("habit_id", h.ID),
		zap.Int("current", res.Current),
		zap.Int("longest", res.Longest))
	return nil
}
