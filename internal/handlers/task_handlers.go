package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"achieveTracker/internal/handlers/dto"
	"achieveTracker/internal/logger"
	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/task"
	"achieveTracker/internal/service"
)

type TaskHandler struct {
	TaskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "userId"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задач")

	tasks, err := s.TaskService.GetAllTasks(r.Context(), userID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (s *TaskHandler) GetTasksByQuadrant(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	q, ok := task.ParseQuadrant(chi.URLParam(r, "quadrant"))
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("param", "quadrant"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение quadrant")
		return
	}

	tasks, err := s.TaskService.GetTasksByQuadrant(r.Context(), userID, q)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи квадранта получены",
		zap.String("quadrant", string(q)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (s *TaskHandler) GetTodayTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	tasks, err := s.TaskService.GetTodayTasks(r.Context(), userID, dates.Today())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (s *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	tasks, err := s.TaskService.GetOverdueTasks(r.Context(), userID, dates.Today())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")

	t, err := s.TaskService.CreateNewTask(r.Context(), userID,
		request.Title, request.Description, request.DueDate,
		request.IsImportant, request.IsUrgent)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Uint("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(t)))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение id")
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения задачи")

	t, err := s.TaskService.GetTaskByID(r.Context(), userID, id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка в Service", err,
			zap.String("operation", "get_task"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Uint("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение id")
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления:"+err.Error())
		return
	}

	logger.Info("HTTP: запрос к сервису обновления данных")

	var title string
	if request.Title != nil {
		title = *request.Title
	}

	t, err := s.TaskService.UpdateTaskByID(r.Context(), userID, id,
		task.WithTitle(title),
		task.WithDescription(request.Description),
		task.WithDueDate(request.DueDate),
		task.WithImportant(request.IsImportant),
		task.WithUrgent(request.IsUrgent))
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_task"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	s.toggleTask(w, r, true)
}

func (s *TaskHandler) ReopenTask(w http.ResponseWriter, r *http.Request) {
	s.toggleTask(w, r, false)
}

func (s *TaskHandler) toggleTask(w http.ResponseWriter, r *http.Request, done bool) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение id")
		return
	}

	var (
		t   *task.Task
		err error
	)
	if done {
		t, err = s.TaskService.CompleteTask(r.Context(), userID, id)
	} else {
		t, err = s.TaskService.ReopenTask(r.Context(), userID, id)
	}
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "toggle_task"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Статус задачи изменён",
		zap.Uint("task_id", t.ID),
		zap.Bool("completed", done),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	id, ok := parseIDParam(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение id")
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")

	if err := s.TaskService.DeleteTaskByID(r.Context(), userID, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_task"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
