package task

import "achieveTracker/internal/models/dates"

// TaskOption — функция точечного обновления полей задачи.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(t *Task) {
		t.Title = title
	}
}

func WithDescription(description *string) TaskOption {
	if description == nil {
		return nil
	}
	return func(t *Task) {
		t.Description = *description
	}
}

func WithDueDate(due *dates.Date) TaskOption {
	if due == nil {
		return nil
	}
	return func(t *Task) {
		t.DueDate = *due
	}
}

func WithImportant(important *bool) TaskOption {
	if important == nil {
		return nil
	}
	return func(t *Task) {
		t.IsImportant = *important
	}
}

func WithUrgent(urgent *bool) TaskOption {
	if urgent == nil {
		return nil
	}
	return func(t *Task) {
		t.IsUrgent = *urgent
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(t *Task) {
		t.IsCompleted = completed
	}
}
