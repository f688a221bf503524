package handlers

import (
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"achieveTracker/internal/handlers/dto"
	"achieveTracker/internal/logger"
	"achieveTracker/internal/service"
	syncer "achieveTracker/internal/sync"
)

type SyncHandler struct {
	Engine       *syncer.Engine
	TaskService  *service.TaskService
	HabitService *service.HabitService
}

func NewSyncHandler(engine *syncer.Engine, taskService *service.TaskService, habitService *service.HabitService) *SyncHandler {
	return &SyncHandler{
		Engine:       engine,
		TaskService:  taskService,
		HabitService: habitService,
	}
}

// TriggerSync запускает проход синхронизации вручную.
// Проход, завершившийся с по-записными ошибками, отдаётся как 207:
// часть записей уехала, часть подождёт следующего прохода.
func (s *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	logger.Info("HTTP: Запуск синхронизации",
		zap.Int64("user_id", userID))

	report, err := s.Engine.SafeFullSync(r.Context(), userID)
	if err != nil {
		logger.Error("HTTP: Синхронизация прервана", err,
			zap.Int64("user_id", userID),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if !report.Clean() {
		status = http.StatusMultiStatus
	}

	logger.Info("HTTP_OUT: Синхронизация завершена",
		zap.String("sync_id", report.SyncID),
		zap.Int("errors", report.ErrorCount()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", status))

	responseWithJSON(w, status, toPayload("report", dto.SyncReportResponse{
		SyncID:       report.SyncID,
		TasksPushed:  report.TasksPushed,
		TasksPulled:  report.TasksPulled,
		HabitsPushed: report.HabitsPushed,
		HabitsPulled: report.HabitsPulled,
		Purged:       report.Purged,
		Errors:       report.ErrorCount(),
		TookMs:       report.Duration().Milliseconds(),
	}))
}

// Search ищет по подстроке одновременно в задачах и привычках.
func (s *SyncHandler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	query := r.URL.Query().Get("q")

	tasks, err := s.TaskService.SearchTasks(r.Context(), userID, query)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "search"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	habits, err := s.HabitService.SearchHabits(r.Context(), userID, query)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "search"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Title < tasks[j].Title })
	sort.Slice(habits, func(i, j int) bool { return habits[i].Name < habits[j].Name })

	logger.Info("HTTP_OUT: Поиск выполнен",
		zap.Int("tasks", len(tasks)),
		zap.Int("habits", len(habits)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("result", dto.SearchResponse{
		Tasks:  dto.FromTaskList(tasks),
		Habits: dto.FromHabitList(habits),
	}))
}

func (s *SyncHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err := s.HabitService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}
