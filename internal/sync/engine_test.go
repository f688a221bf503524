package sync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/models/task"
	"achieveTracker/internal/remote"
	"achieveTracker/internal/repository"
	syncer "achieveTracker/internal/sync"
)

// MockTaskRepository - мок локального хранилища задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, userID int64, id uint) (*task.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAll(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAllNonDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetAllDeleted(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Search(ctx context.Context, userID int64, query string) ([]*task.Task, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockTaskRepository) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	args := m.Called(ctx, userID, id, remoteID)
	return args.Error(0)
}

func (m *MockTaskRepository) ReplaceActive(ctx context.Context, userID int64, snapshot []*task.Task) error {
	args := m.Called(ctx, userID, snapshot)
	return args.Error(0)
}

func (m *MockTaskRepository) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTaskRepository) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)

// MockHabitRepository - мок локального хранилища привычек
type MockHabitRepository struct {
	mock.Mock
}

func (m *MockHabitRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHabitRepository) Create(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHabitRepository) Update(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHabitRepository) GetByID(ctx context.Context, userID int64, id uint) (*habit.Habit, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) GetAll(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) GetAllNonDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) GetAllDeleted(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) Search(ctx context.Context, userID int64, query string) ([]*habit.Habit, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockHabitRepository) SetRemoteID(ctx context.Context, userID int64, id uint, remoteID int64) error {
	args := m.Called(ctx, userID, id, remoteID)
	return args.Error(0)
}

func (m *MockHabitRepository) ReplaceActive(ctx context.Context, userID int64, snapshot []*habit.Habit) error {
	args := m.Called(ctx, userID, snapshot)
	return args.Error(0)
}

func (m *MockHabitRepository) MarkDeleted(ctx context.Context, userID int64, id uint) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockHabitRepository) PurgeDeleted(ctx context.Context, userID int64, ids []uint) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func (m *MockHabitRepository) UpdateStreaks(ctx context.Context, userID int64, id uint, current, longest int) error {
	args := m.Called(ctx, userID, id, current, longest)
	return args.Error(0)
}

func (m *MockHabitRepository) SetCompletion(ctx context.Context, habitID uint, date dates.Date, done bool) error {
	args := m.Called(ctx, habitID, date, done)
	return args.Error(0)
}

func (m *MockHabitRepository) IsCompletedOn(ctx context.Context, habitID uint, date dates.Date) (bool, error) {
	args := m.Called(ctx, habitID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockHabitRepository) GetCompletionsInRange(ctx context.Context, habitID uint, from, to dates.Date) ([]habit.Completion, error) {
	args := m.Called(ctx, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]habit.Completion), args.Error(1)
}

var _ repository.HabitRepository = (*MockHabitRepository)(nil)

// MockTaskAPI - мок удалённого клиента задач
type MockTaskAPI struct {
	mock.Mock
}

func (m *MockTaskAPI) List(ctx context.Context, userID int64) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskAPI) Create(ctx context.Context, t *task.Task) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskAPI) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskAPI) Delete(ctx context.Context, remoteID int64) error {
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

var _ remote.TaskAPI = (*MockTaskAPI)(nil)

// MockHabitAPI - мок удалённого клиента привычек
type MockHabitAPI struct {
	mock.Mock
}

func (m *MockHabitAPI) List(ctx context.Context, userID int64) ([]*habit.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*habit.Habit), args.Error(1)
}

func (m *MockHabitAPI) Create(ctx context.Context, h *habit.Habit) (int64, error) {
	args := m.Called(ctx, h)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHabitAPI) Update(ctx context.Context, h *habit.Habit) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHabitAPI) Delete(ctx context.Context, remoteID int64) error {
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

var _ remote.HabitAPI = (*MockHabitAPI)(nil)

type engineMocks struct {
	tasks        *MockTaskRepository
	habits       *MockHabitRepository
	remoteTasks  *MockTaskAPI
	remoteHabits *MockHabitAPI
}

func newEngine() (*syncer.Engine, *engineMocks) {
	m := &engineMocks{
		tasks:        new(MockTaskRepository),
		habits:       new(MockHabitRepository),
		remoteTasks:  new(MockTaskAPI),
		remoteHabits: new(MockHabitAPI),
	}
	return syncer.NewEngine(m.tasks, m.habits, m.remoteTasks, m.remoteHabits), m
}

// noHabits закрывает привычковую половину прохода пустыми данными
func (m *engineMocks) noHabits() {
	m.habits.On("GetAllDeleted", mock.Anything, mock.Anything).Return([]*habit.Habit{}, nil)
	m.habits.On("PurgeDeleted", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.habits.On("GetAllNonDeleted", mock.Anything, mock.Anything).Return([]*habit.Habit{}, nil)
	m.remoteHabits.On("List", mock.Anything, mock.Anything).Return([]*habit.Habit{}, nil)
}

func (m *engineMocks) noTasks() {
	m.tasks.On("GetAllDeleted", mock.Anything, mock.Anything).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, mock.Anything).Return([]*task.Task{}, nil)
	m.remoteTasks.On("List", mock.Anything, mock.Anything).Return([]*task.Task{}, nil)
}

// TestEngine_EmptySnapshotIsNotApplied тестирует защиту от затирания
// локальных данных пустым удалённым снимком
func TestEngine_EmptySnapshotIsNotApplied(t *testing.T) {
	engine, m := newEngine()
	m.noTasks()
	m.noHabits()

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, report.Clean())
	m.tasks.AssertNotCalled(t, "ReplaceActive", mock.Anything, mock.Anything, mock.Anything)
	m.habits.AssertNotCalled(t, "ReplaceActive", mock.Anything, mock.Anything, mock.Anything)
}

// TestEngine_CreateWritesBackRemoteID тестирует запись id,
// назначенного сервером при create
func TestEngine_CreateWritesBackRemoteID(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	local := &task.Task{ID: 7, UserID: 1, Title: "без двойника"}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{local}, nil)
	m.remoteTasks.On("Create", mock.Anything, local).Return(int64(42), nil)
	m.tasks.On("SetRemoteID", mock.Anything, int64(1), uint(7), int64(42)).Return(nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksPushed)
	assert.True(t, report.Clean())
	m.tasks.AssertCalled(t, "SetRemoteID", mock.Anything, int64(1), uint(7), int64(42))
	m.remoteTasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// TestEngine_SyncedRecordIsUpdatedNotCreated тестирует, что запись
// с двойником не создаётся повторно
func TestEngine_SyncedRecordIsUpdatedNotCreated(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	local := &task.Task{ID: 7, RemoteID: 42, UserID: 1, Title: "с двойником"}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{local}, nil)
	m.remoteTasks.On("Update", mock.Anything, local).Return(nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksPushed)
	m.remoteTasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestEngine_LostRemoteCounterpartIsRecreated тестирует fallback
// update -> create по ответу 404
func TestEngine_LostRemoteCounterpartIsRecreated(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	local := &task.Task{ID: 7, RemoteID: 42, UserID: 1, Title: "потерянный двойник"}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{local}, nil)
	m.remoteTasks.On("Update", mock.Anything, local).Return(remote.ErrNotFound)
	m.remoteTasks.On("Create", mock.Anything, local).Return(int64(99), nil)
	m.tasks.On("SetRemoteID", mock.Anything, int64(1), uint(7), int64(99)).Return(nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksPushed)
	assert.True(t, report.Clean())
}

// TestEngine_PerRecordErrorDoesNotStopThePass тестирует продолжение
// прохода после транспортной ошибки на одной записи
func TestEngine_PerRecordErrorDoesNotStopThePass(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	broken := &task.Task{ID: 1, UserID: 1, Title: "не уедет"}
	healthy := &task.Task{ID: 2, UserID: 1, Title: "уедет"}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{broken, healthy}, nil)
	m.remoteTasks.On("Create", mock.Anything, broken).
		Return(int64(0), &remote.TransportError{Op: "POST /tasks", Err: errors.New("timeout")})
	m.remoteTasks.On("Create", mock.Anything, healthy).Return(int64(5), nil)
	m.tasks.On("SetRemoteID", mock.Anything, int64(1), uint(2), int64(5)).Return(nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.TasksPushed)
	assert.Equal(t, 1, report.ErrorCount())
}

// TestEngine_TombstonePurgedOnlyAfterRemoteConfirms тестирует двухфазное удаление
func TestEngine_TombstonePurgedOnlyAfterRemoteConfirms(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	confirmed := &task.Task{ID: 3, RemoteID: 30, UserID: 1, Deleted: true}
	unreachable := &task.Task{ID: 4, RemoteID: 40, UserID: 1, Deleted: true}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).
		Return([]*task.Task{confirmed, unreachable}, nil)
	m.remoteTasks.On("Delete", mock.Anything, int64(30)).Return(nil)
	m.remoteTasks.On("Delete", mock.Anything, int64(40)).
		Return(&remote.TransportError{Op: "DELETE /tasks/40", Err: errors.New("connection refused")})
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), []uint{3}).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Purged)
	assert.Equal(t, 1, report.ErrorCount())
	m.tasks.AssertCalled(t, "PurgeDeleted", mock.Anything, int64(1), []uint{3})
}

// TestEngine_TombstoneWithoutCounterpartIsPurgedLocally тестирует
// вычистку томбстоуна, который так и не уехал на сервер
func TestEngine_TombstoneWithoutCounterpartIsPurgedLocally(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	local := &task.Task{ID: 5, RemoteID: 0, UserID: 1, Deleted: true}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{local}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), []uint{5}).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Purged)
	m.remoteTasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// TestEngine_RemoteSnapshotReplacesActive тестирует приём непустого снимка
func TestEngine_RemoteSnapshotReplacesActive(t *testing.T) {
	engine, m := newEngine()
	m.noTasks()

	snapshot := []*habit.Habit{
		{RemoteID: 11, UserID: 1, Name: "чтение", Kind: habit.Daily},
		{RemoteID: 12, UserID: 1, Name: "бег", Kind: habit.Weekly, WeekDays: habit.Monday | habit.Friday},
	}

	m.habits.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*habit.Habit{}, nil)
	m.habits.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.habits.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*habit.Habit{}, nil)
	m.remoteHabits.On("List", mock.Anything, int64(1)).Return(snapshot, nil)
	m.habits.On("ReplaceActive", mock.Anything, int64(1), snapshot).Return(nil)

	report, err := engine.SafeFullSync(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, report.HabitsPulled)
	m.habits.AssertCalled(t, "ReplaceActive", mock.Anything, int64(1), snapshot)
}

// TestEngine_LocalStoreFailureAbortsThePass тестирует, что отказ локального
// хранилища прерывает проход целиком
func TestEngine_LocalStoreFailureAbortsThePass(t *testing.T) {
	engine, m := newEngine()

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).
		Return(nil, errors.New("база недоступна"))

	_, err := engine.SafeFullSync(context.Background(), 1)

	require.Error(t, err)
	m.remoteTasks.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

// TestEngine_DoublePushIsIdempotent тестирует, что повторный проход
// не создаёт дубликатов
func TestEngine_DoublePushIsIdempotent(t *testing.T) {
	engine, m := newEngine()
	m.noHabits()

	local := &task.Task{ID: 7, UserID: 1, Title: "один раз"}

	m.tasks.On("GetAllDeleted", mock.Anything, int64(1)).Return([]*task.Task{}, nil)
	m.tasks.On("PurgeDeleted", mock.Anything, int64(1), mock.Anything).Return(nil)
	m.tasks.On("GetAllNonDeleted", mock.Anything, int64(1)).Return([]*task.Task{local}, nil)
	m.remoteTasks.On("Create", mock.Anything, local).Return(int64(42), nil).Once()
	m.tasks.On("SetRemoteID", mock.Anything, int64(1), uint(7), int64(42)).Return(nil)
	m.remoteTasks.On("Update", mock.Anything, local).Return(nil)
	m.remoteTasks.On("List", mock.Anything, int64(1)).Return([]*task.Task{}, nil)

	_, err := engine.SafeFullSync(context.Background(), 1)
	require.NoError(t, err)

	// после первого прохода у записи появился remote_id
	_, err = engine.SafeFullSync(context.Background(), 1)
	require.NoError(t, err)

	m.remoteTasks.AssertNumberOfCalls(t, "Create", 1)
}
