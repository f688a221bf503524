package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	repo "achieveTracker/internal/repository"
	"achieveTracker/internal/repository/inmemory"
)

func newHabit(userID int64, name string) *habit.Habit {
	h := &habit.Habit{UserID: userID, Name: name}
	h.SetFrequency(habit.EveryDay())
	return h
}

// TestHabitStorage_CreateAndGet тестирует создание и чтение привычки
func TestHabitStorage_CreateAndGet(t *testing.T) {
	storage := inmemory.NewHabitStorage()
	ctx := context.Background()

	created := newHabit(1, "чтение")
	created.Reminder = &habit.Reminder{Hour: 21, Minute: 30}
	require.NoError(t, storage.Create(ctx, created))
	assert.NotZero(t, created.ID)

	got, err := storage.GetByID(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "чтение", got.Name)
	assert.Equal(t, habit.EveryDay(), got.Frequency())
	require.NotNil(t, got.Reminder)
	assert.Equal(t, 21, got.Reminder.Hour)

	_, err = storage.GetByID(ctx, 2, created.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// TestHabitStorage_Completions тестирует запись и чтение отметок
func TestHabitStorage_Completions(t *testing.T) {
	storage := inmemory.NewHabitStorage()
	ctx := context.Background()

	h := newHabit(1, "бег")
	require.NoError(t, storage.Create(ctx, h))

	day1 := dates.New(2025, time.February, 1)
	day2 := dates.New(2025, time.February, 2)
	day3 := dates.New(2025, time.February, 3)

	require.NoError(t, storage.SetCompletion(ctx, h.ID, day1, true))
	require.NoError(t, storage.SetCompletion(ctx, h.ID, day2, true))
	require.NoError(t, storage.SetCompletion(ctx, h.ID, day2, false)) // перезапись
	require.NoError(t, storage.SetCompletion(ctx, h.ID, day3, true))

	done, err := storage.IsCompletedOn(ctx, h.ID, day1)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = storage.IsCompletedOn(ctx, h.ID, day2)
	require.NoError(t, err)
	assert.False(t, done)

	// день без записи считается невыполненным
	done, err = storage.IsCompletedOn(ctx, h.ID, dates.New(2025, time.February, 10))
	require.NoError(t, err)
	assert.False(t, done)

	comps, err := storage.GetCompletionsInRange(ctx, h.ID, day1, day2)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Equal(t, day1, comps[0].Date)
	assert.True(t, comps[0].IsCompleted)
	assert.Equal(t, day2, comps[1].Date)
	assert.False(t, comps[1].IsCompleted)
}

// TestHabitStorage_UpdateStreaks тестирует сохранение кэша серий
func TestHabitStorage_UpdateStreaks(t *testing.T) {
	storage := inmemory.NewHabitStorage()
	ctx := context.Background()

	h := newHabit(1, "медитация")
	require.NoError(t, storage.Create(ctx, h))

	require.NoError(t, storage.UpdateStreaks(ctx, 1, h.ID, 4, 9))

	got, err := storage.GetByID(ctx, 1, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, 9, got.LongestStreak)

	assert.ErrorIs(t, storage.UpdateStreaks(ctx, 2, h.ID, 1, 1), repo.ErrNotFound)
}

// TestHabitStorage_PurgeDropsCompletions тестирует каскадную вычистку отметок
func TestHabitStorage_PurgeDropsCompletions(t *testing.T) {
	storage := inmemory.NewHabitStorage()
	ctx := context.Background()

	h := newHabit(1, "дневник")
	require.NoError(t, storage.Create(ctx, h))

	day := dates.New(2025, time.February, 1)
	require.NoError(t, storage.SetCompletion(ctx, h.ID, day, true))

	require.NoError(t, storage.MarkDeleted(ctx, 1, h.ID))
	require.NoError(t, storage.PurgeDeleted(ctx, 1, []uint{h.ID}))

	comps, err := storage.GetCompletionsInRange(ctx, h.ID, day, day)
	require.NoError(t, err)
	assert.Empty(t, comps)
}

// TestHabitStorage_ReplaceActiveDropsCompletions тестирует, что замена
// снимком сбрасывает историю заменённых привычек
func TestHabitStorage_ReplaceActiveDropsCompletions(t *testing.T) {
	storage := inmemory.NewHabitStorage()
	ctx := context.Background()

	h := newHabit(1, "заменяемая")
	h.RemoteID = 10
	require.NoError(t, storage.Create(ctx, h))

	day := dates.New(2025, time.February, 1)
	require.NoError(t, storage.SetCompletion(ctx, h.ID, day, true))

	snapshot := []*habit.Habit{{RemoteID: 10, Name: "заменяемая", Kind: habit.Daily}}
	require.NoError(t, storage.ReplaceActive(ctx, 1, snapshot))

	comps, err := storage.GetCompletionsInRange(ctx, h.ID, day, day)
	require.NoError(t, err)
	assert.Empty(t, comps)

	active, err := storage.GetAllNonDeleted(ctx, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	// строка снимка получила новый локальный id
	assert.NotEqual(t, h.ID, active[0].ID)
	assert.Equal(t, int64(10), active[0].RemoteID)
}
