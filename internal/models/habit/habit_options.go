package habit

// HabitOption — функция точечного обновления полей привычки.
type HabitOption func(*Habit)

func WithName(name string) HabitOption {
	if name == "" {
		return nil
	}
	return func(h *Habit) {
		h.Name = name
	}
}

func WithDescription(description *string) HabitOption {
	if description == nil {
		return nil
	}
	return func(h *Habit) {
		h.Description = *description
	}
}

func WithFrequency(f *Frequency) HabitOption {
	if f == nil || !f.Valid() {
		return nil
	}
	return func(h *Habit) {
		h.SetFrequency(*f)
	}
}

func WithReminder(r *Reminder) HabitOption {
	if r == nil || !r.Valid() {
		return nil
	}
	return func(h *Habit) {
		h.Reminder = r
	}
}

func WithStreaks(current, longest int) HabitOption {
	return func(h *Habit) {
		h.CurrentStreak = current
		if longest > h.LongestStreak {
			h.LongestStreak = longest
		}
	}
}
