package task

import (
	"time"

	"achieveTracker/internal/models/dates"
)

// Task — разовая задача пользователя с разбиением по матрице Эйзенхауэра.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RemoteID    int64      `json:"remote_id" gorm:"index"`
	UserID      int64      `json:"user_id" gorm:"index"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     dates.Date `json:"due_date,omitempty"`
	IsImportant bool       `json:"is_important"`
	IsUrgent    bool       `json:"is_urgent"`
	IsCompleted bool       `json:"is_completed"`
	Deleted     bool       `json:"deleted" gorm:"index;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Quadrant string

const (
	QuadrantUrgentImportant    Quadrant = "urgent-important"
	QuadrantImportantNotUrgent Quadrant = "important-not-urgent"
	QuadrantUrgentNotImportant Quadrant = "urgent-not-important"
	QuadrantNeither            Quadrant = "neither"
)

// Quadrant — производное значение, в БД не хранится.
func (t *Task) Quadrant() Quadrant {
	switch {
	case t.IsImportant && t.IsUrgent:
		return QuadrantUrgentImportant
	case t.IsImportant:
		return QuadrantImportantNotUrgent
	case t.IsUrgent:
		return QuadrantUrgentNotImportant
	default:
		return QuadrantNeither
	}
}

func ParseQuadrant(s string) (Quadrant, bool) {
	switch Quadrant(s) {
	case QuadrantUrgentImportant, QuadrantImportantNotUrgent,
		QuadrantUrgentNotImportant, QuadrantNeither:
		return Quadrant(s), true
	}
	return "", false
}

// Synced сообщает, есть ли у задачи удалённый двойник.
func (t *Task) Synced() bool {
	return t.RemoteID != 0
}

func (t *Task) IsOverdue(today dates.Date) bool {
	return !t.IsCompleted && !t.DueDate.IsZero() && t.DueDate.Before(today)
}
