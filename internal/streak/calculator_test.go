package streak_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/streak"
)

func d(year int, month time.Month, day int) dates.Date {
	return dates.New(year, month, day)
}

func completed(ds ...dates.Date) []habit.Completion {
	comps := make([]habit.Completion, len(ds))
	for i, day := range ds {
		comps[i] = habit.Completion{HabitID: 1, Date: day, IsCompleted: true}
	}
	return comps
}

// TestCalculator_Compute тестирует расчёт серий по истории отметок
func TestCalculator_Compute(t *testing.T) {
	// 2024-01-01 — понедельник
	created := d(2024, time.January, 1)

	tests := []struct {
		name            string
		policy          streak.Policy
		freq            habit.Frequency
		completions     []habit.Completion
		asOf            dates.Date
		storedLongest   int
		expectedCurrent int
		expectedLongest int
	}{
		{
			name:   "daily - three days in a row",
			policy: streak.PolicyGraceToday,
			freq:   habit.EveryDay(),
			completions: completed(
				d(2024, time.January, 5),
				d(2024, time.January, 6),
				d(2024, time.January, 7),
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 3,
			expectedLongest: 3,
		},
		{
			name:   "daily - extra day extends the run",
			policy: streak.PolicyGraceToday,
			freq:   habit.EveryDay(),
			completions: completed(
				d(2024, time.January, 4),
				d(2024, time.January, 5),
				d(2024, time.January, 6),
				d(2024, time.January, 7),
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 4,
			expectedLongest: 4,
		},
		{
			name:   "daily - grace keeps the run when today is still open",
			policy: streak.PolicyGraceToday,
			freq:   habit.EveryDay(),
			completions: completed(
				d(2024, time.January, 5),
				d(2024, time.January, 6),
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 2,
			expectedLongest: 2,
		},
		{
			name:   "daily - strict resets when today is not done",
			policy: streak.PolicyStrictToday,
			freq:   habit.EveryDay(),
			completions: completed(
				d(2024, time.January, 5),
				d(2024, time.January, 6),
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 0,
			expectedLongest: 2,
		},
		{
			name:   "weekly mon/wed/fri - off days do not break the run",
			policy: streak.PolicyGraceToday,
			freq:   habit.OnWeekdays(habit.Monday | habit.Wednesday | habit.Friday),
			completions: completed(
				d(2024, time.January, 1), // Пн
				d(2024, time.January, 3), // Ср
				d(2024, time.January, 5), // Пт
			),
			asOf:            d(2024, time.January, 5),
			expectedCurrent: 3,
			expectedLongest: 3,
		},
		{
			name:   "weekly mon/wed/fri - missed wednesday resets",
			policy: streak.PolicyGraceToday,
			freq:   habit.OnWeekdays(habit.Monday | habit.Wednesday | habit.Friday),
			completions: completed(
				d(2024, time.January, 1), // Пн
				d(2024, time.January, 5), // Пт
			),
			asOf:            d(2024, time.January, 5),
			expectedCurrent: 1,
			expectedLongest: 1,
		},
		{
			name:   "longest survives a broken run",
			policy: streak.PolicyGraceToday,
			freq:   habit.EveryDay(),
			completions: completed(
				d(2024, time.January, 1),
				d(2024, time.January, 2),
				d(2024, time.January, 3),
				d(2024, time.January, 6),
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 1,
			expectedLongest: 3,
		},
		{
			name:            "stored longest is monotonic",
			policy:          streak.PolicyGraceToday,
			freq:            habit.EveryDay(),
			completions:     completed(d(2024, time.January, 7)),
			asOf:            d(2024, time.January, 7),
			storedLongest:   10,
			expectedCurrent: 1,
			expectedLongest: 10,
		},
		{
			name:            "empty history",
			policy:          streak.PolicyGraceToday,
			freq:            habit.EveryDay(),
			completions:     nil,
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 0,
			expectedLongest: 0,
		},
		{
			name:   "unchecking a day drops the run",
			policy: streak.PolicyGraceToday,
			freq:   habit.EveryDay(),
			completions: append(
				completed(
					d(2024, time.January, 5),
					d(2024, time.January, 7),
				),
				habit.Completion{HabitID: 1, Date: d(2024, time.January, 6), IsCompleted: false},
			),
			asOf:            d(2024, time.January, 7),
			expectedCurrent: 1,
			expectedLongest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := streak.NewCalculator(tt.policy, streak.DefaultLookbackDays)

			res := calc.Compute(tt.completions, tt.freq, created, tt.asOf, tt.storedLongest)

			assert.Equal(t, tt.expectedCurrent, res.Current, "current streak")
			assert.Equal(t, tt.expectedLongest, res.Longest, "longest streak")
		})
	}
}

// TestCalculator_LookbackBound тестирует ограничение глубины обхода
func TestCalculator_LookbackBound(t *testing.T) {
	asOf := d(2024, time.June, 1)
	calc := streak.NewCalculator(streak.PolicyStrictToday, 5)

	// непрерывно выполнено 30 дней подряд до asOf включительно
	comps := make([]habit.Completion, 0, 30)
	for i := 0; i < 30; i++ {
		comps = append(comps, habit.Completion{
			HabitID:     1,
			Date:        asOf.AddDays(-i),
			IsCompleted: true,
		})
	}

	res := calc.Compute(comps, habit.EveryDay(), d(2023, time.January, 1), asOf, 0)

	// окно в 5 дней назад от asOf покрывает 6 календарных дат
	assert.Equal(t, 6, res.Current)
	assert.Equal(t, 6, res.Longest)
}

// TestCalculator_CreatedAtFloor тестирует, что дни до создания привычки не учитываются
func TestCalculator_CreatedAtFloor(t *testing.T) {
	created := d(2024, time.January, 6)
	calc := streak.NewCalculator(streak.PolicyGraceToday, streak.DefaultLookbackDays)

	comps := completed(
		d(2024, time.January, 4), // до создания
		d(2024, time.January, 5), // до создания
		d(2024, time.January, 6),
		d(2024, time.January, 7),
	)

	res := calc.Compute(comps, habit.EveryDay(), created, d(2024, time.January, 7), 0)

	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 2, res.Longest)
}
