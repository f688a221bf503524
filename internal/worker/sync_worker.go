package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"achieveTracker/internal/logger"
	"achieveTracker/internal/repository"
	syncer "achieveTracker/internal/sync"
)

// SyncWorker периодически прогоняет полную синхронизацию для каждого
// пользователя, у которого есть локальные данные. Ручной запуск через API
// безопасен параллельно с воркером: конкурентные проходы по одному
// пользователю схлопывает движок.
type SyncWorker struct {
	engine   *syncer.Engine
	tasks    repository.TaskRepository
	habits   repository.HabitRepository
	interval time.Duration
	cron     *cron.Cron
}

func NewSyncWorker(
	engine *syncer.Engine,
	tasks repository.TaskRepository,
	habits repository.HabitRepository,
	interval *time.Duration,
) *SyncWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 30 * time.Minute
	} else {
		intervalToSet = *interval
	}

	return &SyncWorker{
		engine:   engine,
		tasks:    tasks,
		habits:   habits,
		interval: intervalToSet,
		cron:     cron.New(),
	}
}

func (w *SyncWorker) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %ds", int(w.interval.Seconds()))
	if _, err := w.cron.AddFunc(spec, func() {
		logger.Info("Worker: Фоновая синхронизация", zap.Time("started_at", time.Now()))
		w.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("регистрация задания синхронизации: %w", err)
	}

	w.cron.Start()
	logger.Info("Worker: Фоновая синхронизация запущена",
		zap.Duration("interval", w.interval))
	return nil
}

func (w *SyncWorker) Stop() {
	stopped := w.cron.Stop()
	<-stopped.Done()
	logger.Info("Worker: Фоновая синхронизация остановлена")
}

// RunOnce синхронизирует всех известных пользователей по очереди.
// Ошибка одного пользователя не мешает остальным.
func (w *SyncWorker) RunOnce(ctx context.Context) {
	start := time.Now()

	userIDs, err := w.collectUserIDs(ctx)
	if err != nil {
		logger.Warn("Worker: ошибка получения пользователей", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		report, err := w.engine.SafeFullSync(ctx, userID)
		if err != nil {
			logger.Warn("Worker: синхронизация пользователя прервана",
				zap.Int64("user_id", userID),
				zap.Error(err))
			continue
		}
		if !report.Clean() {
			logger.Warn("Worker: синхронизация с частичными ошибками",
				zap.Int64("user_id", userID),
				zap.String("sync_id", report.SyncID),
				zap.Int("errors", report.ErrorCount()))
		}
	}

	logger.Info("Worker: Проход по пользователям завершён",
		zap.Int("users", len(userIDs)),
		zap.Duration("ms", time.Since(start)))
}

func (w *SyncWorker) collectUserIDs(ctx context.Context) ([]int64, error) {
	fromTasks, err := w.tasks.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("пользователи задач: %w", err)
	}
	fromHabits, err := w.habits.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("пользователи привычек: %w", err)
	}

	seen := make(map[int64]struct{}, len(fromTasks)+len(fromHabits))
	merged := make([]int64, 0, len(fromTasks)+len(fromHabits))
	for _, id := range fromTasks {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	for _, id := range fromHabits {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged, nil
}
