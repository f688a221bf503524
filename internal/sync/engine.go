package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"achieveTracker/internal/logger"
	"achieveTracker/internal/remote"
	"achieveTracker/internal/repository"
)

// Engine — движок сверки локального хранилища с удалённым.
// Удалённые записи трогает только он: сервисы пишут строго локально,
// а движок догоняет сервер при каждом проходе.
type Engine struct {
	tasks  repository.TaskRepository
	habits repository.HabitRepository

	remoteTasks  remote.TaskAPI
	remoteHabits remote.HabitAPI

	group singleflight.Group
}

func NewEngine(
	tasks repository.TaskRepository,
	habits repository.HabitRepository,
	remoteTasks remote.TaskAPI,
	remoteHabits remote.HabitAPI,
) *Engine {
	return &Engine{
		tasks:        tasks,
		habits:       habits,
		remoteTasks:  remoteTasks,
		remoteHabits: remoteHabits,
	}
}

// SafeFullSync выполняет полный проход: сверка удалений, отправка локальных
// изменений, затем приём удалённого снимка. Конкурентные вызовы для одного
// пользователя схлопываются в один проход.
//
// Возвращённая ошибка означает отказ локального хранилища (проход прерван);
// по-записные ошибки транспорта копятся в Report.Err.
func (e *Engine) SafeFullSync(ctx context.Context, userID int64) (*Report, error) {
	key := fmt.Sprintf("user:%d", userID)
	v, err, shared := e.group.Do(key, func() (any, error) {
		return e.fullSync(ctx, userID)
	})
	if shared {
		logger.Info("Sync: Проход объединён с уже идущим",
			zap.Int64("user_id", userID))
	}
	if v == nil {
		return nil, err
	}
	return v.(*Report), err
}

func (e *Engine) fullSync(ctx context.Context, userID int64) (*Report, error) {
	report := &Report{
		SyncID:    uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now(),
	}
	logger.Info("Sync: Старт прохода",
		zap.String("sync_id", report.SyncID),
		zap.Int64("user_id", userID))

	if err := e.reconcileDeletes(ctx, userID, report); err != nil {
		return report, err
	}
	if err := e.pushTasks(ctx, userID, report); err != nil {
		return report, err
	}
	if err := e.pushHabits(ctx, userID, report); err != nil {
		return report, err
	}
	if err := e.pullTasks(ctx, userID, report); err != nil {
		return report, err
	}
	if err := e.pullHabits(ctx, userID, report); err != nil {
		return report, err
	}

	report.FinishedAt = time.Now()
	logger.Info("Sync: Проход завершён",
		zap.String("sync_id", report.SyncID),
		zap.Int64("user_id", userID),
		zap.Int("tasks_pushed", report.TasksPushed),
		zap.Int("tasks_pulled", report.TasksPulled),
		zap.Int("habits_pushed", report.HabitsPushed),
		zap.Int("habits_pulled", report.HabitsPulled),
		zap.Int("purged", report.Purged),
		zap.Int("errors", report.ErrorCount()),
		zap.Duration("took", report.Duration()))
	return report, nil
}

// reconcileDeletes проводит вторую фазу двухфазного удаления: для каждого
// томбстоуна пытается удалить удалённого двойника и лишь после подтверждения
// (успех или 404) вычищает запись физически. Транспортная ошибка оставляет
// томбстоун до следующего прохода.
func (e *Engine) reconcileDeletes(ctx context.Context, userID int64, report *Report) error {
	deadTasks, err := e.tasks.GetAllDeleted(ctx, userID)
	if err != nil {
		return fmt.Errorf("выборка томбстоунов задач: %w", err)
	}
	var confirmedTasks []uint
	for _, t := range deadTasks {
		if t.Synced() {
			if err := e.remoteTasks.Delete(ctx, t.RemoteID); err != nil && !errors.Is(err, remote.ErrNotFound) {
				report.addErr(fmt.Errorf("удаление задачи %d на сервере: %w", t.RemoteID, err))
				continue
			}
		}
		confirmedTasks = append(confirmedTasks, t.ID)
	}
	if err := e.tasks.PurgeDeleted(ctx, userID, confirmedTasks); err != nil {
		return fmt.Errorf("вычистка задач: %w", err)
	}
	report.Purged += len(confirmedTasks)

	deadHabits, err := e.habits.GetAllDeleted(ctx, userID)
	if err != nil {
		return fmt.Errorf("выборка томбстоунов привычек: %w", err)
	}
	var confirmedHabits []uint
	for _, h := range deadHabits {
		if h.Synced() {
			if err := e.remoteHabits.Delete(ctx, h.RemoteID); err != nil && !errors.Is(err, remote.ErrNotFound) {
				report.addErr(fmt.Errorf("удаление привычки %d на сервере: %w", h.RemoteID, err))
				continue
			}
		}
		confirmedHabits = append(confirmedHabits, h.ID)
	}
	if err := e.habits.PurgeDeleted(ctx, userID, confirmedHabits); err != nil {
		return fmt.Errorf("вычистка привычек: %w", err)
	}
	report.Purged += len(confirmedHabits)

	return nil
}

// pushTasks отправляет локальные задачи: без удалённого двойника — create
// с записью назначенного id, с двойником — update. Ответ 404 на update
// означает, что двойник потерян, и запись создаётся заново.
func (e *Engine) pushTasks(ctx context.Context, userID int64, report *Report) error {
	local, err := e.tasks.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return fmt.Errorf("выборка задач для отправки: %w", err)
	}
	for _, t := range local {
		if !t.Synced() {
			remoteID, err := e.remoteTasks.Create(ctx, t)
			if err != nil {
				report.addErr(fmt.Errorf("создание задачи %d на сервере: %w", t.ID, err))
				continue
			}
			if err := e.tasks.SetRemoteID(ctx, userID, t.ID, remoteID); err != nil {
				return fmt.Errorf("запись remote_id задачи %d: %w", t.ID, err)
			}
			t.RemoteID = remoteID
			report.TasksPushed++
			continue
		}

		err := e.remoteTasks.Update(ctx, t)
		if errors.Is(err, remote.ErrNotFound) {
			remoteID, createErr := e.remoteTasks.Create(ctx, t)
			if createErr != nil {
				report.addErr(fmt.Errorf("пересоздание задачи %d на сервере: %w", t.ID, createErr))
				continue
			}
			if err := e.tasks.SetRemoteID(ctx, userID, t.ID, remoteID); err != nil {
				return fmt.Errorf("запись remote_id задачи %d: %w", t.ID, err)
			}
			t.RemoteID = remoteID
			report.TasksPushed++
			continue
		}
		if err != nil {
			report.addErr(fmt.Errorf("обновление задачи %d на сервере: %w", t.RemoteID, err))
			continue
		}
		report.TasksPushed++
	}
	return nil
}

func (e *Engine) pushHabits(ctx context.Context, userID int64, report *Report) error {
	local, err := e.habits.GetAllNonDeleted(ctx, userID)
	if err != nil {
		return fmt.Errorf("выборка привычек для отправки: %w", err)
	}
	for _, h := range local {
		if !h.Synced() {
			remoteID, err := e.remoteHabits.Create(ctx, h)
			if err != nil {
				report.addErr(fmt.Errorf("создание привычки %d на сервере: %w", h.ID, err))
				continue
			}
			if err := e.habits.SetRemoteID(ctx, userID, h.ID, remoteID); err != nil {
				return fmt.Errorf("запись remote_id привычки %d: %w", h.ID, err)
			}
			h.RemoteID = remoteID
			report.HabitsPushed++
			continue
		}

		err := e.remoteHabits.Update(ctx, h)
		if errors.Is(err, remote.ErrNotFound) {
			remoteID, createErr := e.remoteHabits.Create(ctx, h)
			if createErr != nil {
				report.addErr(fmt.Errorf("пересоздание привычки %d на сервере: %w", h.ID, createErr))
				continue
			}
			if err := e.habits.SetRemoteID(ctx, userID, h.ID, remoteID); err != nil {
				return fmt.Errorf("запись remote_id привычки %d: %w", h.ID, err)
			}
			h.RemoteID = remoteID
			report.HabitsPushed++
			continue
		}
		if err != nil {
			report.addErr(fmt.Errorf("обновление привычки %d на сервере: %w", h.RemoteID, err))
			continue
		}
		report.HabitsPushed++
	}
	return nil
}

// pullTasks принимает удалённый снимок. Пустой снимок не применяется:
// свежий или обнулённый сервер не должен стирать локальные данные.
func (e *Engine) pullTasks(ctx context.Context, userID int64, report *Report) error {
	snapshot, err := e.remoteTasks.List(ctx, userID)
	if err != nil {
		report.addErr(fmt.Errorf("получение снимка задач: %w", err))
		return nil
	}
	if len(snapshot) == 0 {
		logger.Info("Sync: Пустой снимок задач, приём пропущен",
			zap.Int64("user_id", userID))
		return nil
	}
	if err := e.tasks.ReplaceActive(ctx, userID, snapshot); err != nil {
		return fmt.Errorf("применение снимка задач: %w", err)
	}
	report.TasksPulled = len(snapshot)
	return nil
}

func (e *Engine) pullHabits(ctx context.Context, userID int64, report *Report) error {
	snapshot, err := e.remoteHabits.List(ctx, userID)
	if err != nil {
		report.addErr(fmt.Errorf("получение снимка привычек: %w", err))
		return nil
	}
	if len(snapshot) == 0 {
		logger.Info("Sync: Пустой снимок привычек, приём пропущен",
			zap.Int64("user_id", userID))
		return nil
	}
	if err := e.habits.ReplaceActive(ctx, userID, snapshot); err != nil {
		return fmt.Errorf("применение снимка привычек: %w", err)
	}
	report.HabitsPulled = len(snapshot)
	return nil
}
