package dto

import (
	"time"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/models/task"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     dates.Date `json:"due_date"`
	IsImportant bool       `json:"is_important"`
	IsUrgent    bool       `json:"is_urgent"`
}

type UpdateTaskRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	DueDate     *dates.Date `json:"due_date,omitempty"`
	IsImportant *bool       `json:"is_important,omitempty"`
	IsUrgent    *bool       `json:"is_urgent,omitempty"`
}

type TaskResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     dates.Date `json:"due_date"`
	Quadrant    string     `json:"quadrant"`
	IsImportant bool       `json:"is_important"`
	IsUrgent    bool       `json:"is_urgent"`
	IsCompleted bool       `json:"is_completed"`
	IsOverdue   bool       `json:"is_overdue"`
	IsSynced    bool       `json:"is_synced"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Quadrant:    string(t.Quadrant()),
		IsImportant: t.IsImportant,
		IsUrgent:    t.IsUrgent,
		IsCompleted: t.IsCompleted,
		IsOverdue:   t.IsOverdue(dates.Today()),
		IsSynced:    t.Synced(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CreateHabitRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Frequency   habit.Frequency `json:"frequency"`
	Reminder    *habit.Reminder `json:"reminder,omitempty"`
}

type UpdateHabitRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Frequency   *habit.Frequency `json:"frequency,omitempty"`
	Reminder    *habit.Reminder  `json:"reminder,omitempty"`
}

type HabitResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Frequency     habit.Frequency `json:"frequency"`
	Reminder      *habit.Reminder `json:"reminder,omitempty"`
	CurrentStreak int             `json:"current_streak"`
	LongestStreak int             `json:"longest_streak"`
	IsSynced      bool            `json:"is_synced"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func FromHabit(h *habit.Habit) HabitResponse {
	return HabitResponse{
		ID:            h.ID,
		Name:          h.Name,
		Description:   h.Description,
		Frequency:     h.Frequency(),
		Reminder:      h.Reminder,
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
		IsSynced:      h.Synced(),
		CreatedAt:     h.CreatedAt,
		UpdatedAt:     h.UpdatedAt,
	}
}

func FromHabitList(habits []*habit.Habit) []HabitResponse {
	result := make([]HabitResponse, len(habits))
	for i, h := range habits {
		result[i] = FromHabit(h)
	}
	return result
}

type TodayHabitResponse struct {
	HabitResponse
	IsCompletedToday bool `json:"is_completed_today"`
}

type CompletionResponse struct {
	Date        dates.Date `json:"date"`
	IsCompleted bool       `json:"is_completed"`
}

func FromCompletions(comps []habit.Completion) []CompletionResponse {
	result := make([]CompletionResponse, len(comps))
	for i, c := range comps {
		result[i] = CompletionResponse{Date: c.Date, IsCompleted: c.IsCompleted}
	}
	return result
}

type SearchResponse struct {
	Tasks  []TaskResponse  `json:"tasks"`
	Habits []HabitResponse `json:"habits"`
}

type SyncReportResponse struct {
	SyncID       string `json:"sync_id"`
	TasksPushed  int    `json:"tasks_pushed"`
	TasksPulled  int    `json:"tasks_pulled"`
	HabitsPushed int    `json:"habits_pushed"`
	HabitsPulled int    `json:"habits_pulled"`
	Purged       int    `json:"purged"`
	Errors       int    `json:"errors"`
	TookMs       int64  `json:"took_ms"`
}
