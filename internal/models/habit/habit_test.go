package habit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
)

// TestMaskFor тестирует соответствие битов маски дням стандартной библиотеки
func TestMaskFor(t *testing.T) {
	// у time.Weekday воскресенье = 0, у маски понедельник = бит 0
	assert.Equal(t, habit.Monday, habit.MaskFor(time.Monday))
	assert.Equal(t, habit.Wednesday, habit.MaskFor(time.Wednesday))
	assert.Equal(t, habit.Saturday, habit.MaskFor(time.Saturday))
	assert.Equal(t, habit.Sunday, habit.MaskFor(time.Sunday))
}

// TestWeekdayMask_Valid тестирует границы маски
func TestWeekdayMask_Valid(t *testing.T) {
	assert.False(t, habit.WeekdayMask(0).Valid())
	assert.True(t, habit.Monday.Valid())
	assert.True(t, habit.AllWeek.Valid())
	assert.False(t, (habit.AllWeek + 1).Valid())
}

// TestFrequency_EligibleOn тестирует проверку расписания по дате
func TestFrequency_EligibleOn(t *testing.T) {
	monday := dates.New(2024, time.January, 1) // понедельник
	tuesday := monday.AddDays(1)

	assert.True(t, habit.EveryDay().EligibleOn(monday))
	assert.True(t, habit.EveryDay().EligibleOn(tuesday))

	weekly := habit.OnWeekdays(habit.Monday | habit.Friday)
	assert.True(t, weekly.EligibleOn(monday))
	assert.False(t, weekly.EligibleOn(tuesday))
	assert.True(t, weekly.EligibleOn(monday.AddDays(4))) // пятница
}

// TestFrequency_Valid тестирует помеченный вариант расписания
func TestFrequency_Valid(t *testing.T) {
	assert.True(t, habit.EveryDay().Valid())
	assert.True(t, habit.OnWeekdays(habit.Wednesday).Valid())
	assert.False(t, habit.OnWeekdays(0).Valid())
	assert.False(t, habit.Frequency{Kind: "monthly"}.Valid())
}

// TestHabit_SetFrequency тестирует упаковку расписания в поля модели
func TestHabit_SetFrequency(t *testing.T) {
	var h habit.Habit
	h.SetFrequency(habit.OnWeekdays(habit.Tuesday | habit.Thursday))

	assert.Equal(t, habit.Weekly, h.Kind)
	assert.Equal(t, habit.Tuesday|habit.Thursday, h.WeekDays)
	assert.Equal(t, habit.OnWeekdays(habit.Tuesday|habit.Thursday), h.Frequency())
}
