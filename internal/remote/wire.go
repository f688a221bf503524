package remote

import (
	"time"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/models/task"
)

// Проводной формат удалённого сервиса. Частота кодируется целым тегом:
// 1 — ежедневно, 2 — по дням недели (маска weekDays).
const (
	wireFreqDaily  = 1
	wireFreqWeekly = 2
)

// Task — задача в представлении удалённого сервиса.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	UserID      int64  `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate,omitempty"`
	IsImportant bool   `json:"isImportant"`
	IsUrgent    bool   `json:"isUrgent"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Habit — привычка в представлении удалённого сервиса.
type Habit struct {
	ID             int64  `json:"id,omitempty"`
	UserID         int64  `json:"userId"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	FrequencyType  int    `json:"frequencyType"`
	WeekDays       int    `json:"weekDays"`
	ReminderHour   *int   `json:"reminderHour,omitempty"`
	ReminderMinute *int   `json:"reminderMinute,omitempty"`
	CurrentStreak  int    `json:"currentStreak"`
	LongestStreak  int    `json:"longestStreak"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// TaskToWire переводит локальную задачу в проводной формат.
// Локальный id не уезжает: удалённый сервис сам раздаёт id при create.
func TaskToWire(t *task.Task) *Task {
	w := &Task{
		ID:          t.RemoteID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		IsImportant: t.IsImportant,
		IsUrgent:    t.IsUrgent,
		IsCompleted: t.IsCompleted,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if !t.DueDate.IsZero() {
		w.DueDate = t.DueDate.String()
	}
	return w
}

// TaskFromWire переводит задачу удалённого сервиса в локальную модель.
// Локальный id не назначается: это забота хранилища при вставке.
func TaskFromWire(w *Task) *task.Task {
	t := &task.Task{
		RemoteID:    w.ID,
		UserID:      w.UserID,
		Title:       w.Title,
		Description: w.Description,
		IsImportant: w.IsImportant,
		IsUrgent:    w.IsUrgent,
		IsCompleted: w.IsCompleted,
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
	if w.DueDate != "" {
		if d, err := dates.Parse(w.DueDate); err == nil {
			t.DueDate = d
		}
	}
	return t
}

// HabitToWire переводит локальную привычку в проводной формат.
func HabitToWire(h *habit.Habit) *Habit {
	w := &Habit{
		ID:            h.RemoteID,
		UserID:        h.UserID,
		Name:          h.Name,
		Description:   h.Description,
		FrequencyType: wireFreqDaily,
		CurrentStreak: h.CurrentStreak,
		LongestStreak: h.LongestStreak,
		CreatedAt:     formatTime(h.CreatedAt),
		UpdatedAt:     formatTime(h.UpdatedAt),
	}
	if h.Kind == habit.Weekly {
		w.FrequencyType = wireFreqWeekly
		w.WeekDays = int(h.WeekDays)
	}
	if h.Reminder != nil {
		hour, minute := h.Reminder.Hour, h.Reminder.Minute
		w.ReminderHour = &hour
		w.ReminderMinute = &minute
	}
	return w
}

// HabitFromWire переводит привычку удалённого сервиса в локальную модель.
// Неизвестный тег частоты трактуется как ежедневный — так записи
// не теряются при рассинхроне версий.
func HabitFromWire(w *Habit) *habit.Habit {
	h := &habit.Habit{
		RemoteID:      w.ID,
		UserID:        w.UserID,
		Name:          w.Name,
		Description:   w.Description,
		Kind:          habit.Daily,
		CurrentStreak: w.CurrentStreak,
		LongestStreak: w.LongestStreak,
		CreatedAt:     parseTime(w.CreatedAt),
		UpdatedAt:     parseTime(w.UpdatedAt),
	}
	if w.FrequencyType == wireFreqWeekly {
		h.Kind = habit.Weekly
		h.WeekDays = habit.WeekdayMask(w.WeekDays)
	}
	if w.ReminderHour != nil && w.ReminderMinute != nil {
		h.Reminder = &habit.Reminder{Hour: *w.ReminderHour, Minute: *w.ReminderMinute}
	}
	return h
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
