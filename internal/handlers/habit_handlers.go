package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"achieveTracker/internal/handlers/dto"
	"achieveTracker/internal/logger"
	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/service"
)

type HabitHandler struct {
	HabitService *service.HabitService
}

func NewHabitHandler(habitService *service.HabitService) *HabitHandler {
	return &HabitHandler{
		HabitService: habitService,
	}
}

func (s *HabitHandler) GetAllHabits(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	logger.Info("HTTP: Вызов сервиса для получения привычек")

	habits, err := s.HabitService.GetAllHabits(r.Context(), userID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычки получены",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("habits", dto.FromHabitList(habits)))
}

func (s *HabitHandler) GetTodayHabits(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := parseUserID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "неверное значение userId")
		return
	}

	statuses, err := s.HabitService.GetTodayHabits(r.Context(), userID, dates.Today())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := make([]dto.TodayHabitResponse, len(statuses))
	for i, st := range statuses {
		result[i] = dto.TodayHabitResponse{
			HabitResponse:    dto.FromHabit(st.Habit),
			IsCompletedToday: st.IsCompleted,
		}
	}

	responseWithJSON(w, http.StatusOK, toPayload("habits", result))
}

func (s *HabitHandler) PostHabit(w http.ResponseWriter, r *http.Request) {
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

	var request dto.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса создания привычки")

	h, err := s.HabitService.CreateNewHabit(r.Context(), userID,
		request.Name, request.Description, request.Frequency, request.Reminder)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_habit"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка создана",
		zap.Uint("habit_id", h.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("habit", dto.FromHabit(h)))
}

func (s *HabitHandler) GetHabitByID(w http.ResponseWriter, r *http.Request) {
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

	h, err := s.HabitService.GetHabitByID(r.Context(), userID, id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка в Service", err,
			zap.String("operation", "get_habit"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка получена",
		zap.Uint("habit_id", h.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("habit", dto.FromHabit(h)))
}

func (s *HabitHandler) UpdateHabitByID(w http.ResponseWriter, r *http.Request) {
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

	var request dto.UpdateHabitRequest
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

	var name string
	if request.Name != nil {
		name = *request.Name
	}

	h, err := s.HabitService.UpdateHabitByID(r.Context(), userID, id,
		habit.WithName(name),
		habit.WithDescription(request.Description),
		habit.WithFrequency(request.Frequency),
		habit.WithReminder(request.Reminder))
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_habit"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("habit", dto.FromHabit(h)))
}

func (s *HabitHandler) MarkCompletion(w http.ResponseWriter, r *http.Request) {
	s.setCompletion(w, r, true)
}

func (s *HabitHandler) UnmarkCompletion(w http.ResponseWriter, r *http.Request) {
	s.setCompletion(w, r, false)
}

func (s *HabitHandler) setCompletion(w http.ResponseWriter, r *http.Request, done bool) {
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

	date, ok := parseDateParam(r, "date")
	if !ok {
		logger.Warn("HTTP: Неверное значение даты",
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "дата должна быть в формате 2006-01-02")
		return
	}

	logger.Info("HTTP: Вызов сервиса отметки привычки")

	h, err := s.HabitService.SetCompletion(r.Context(), userID, id, date, done)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "set_completion"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Отметка записана",
		zap.Uint("habit_id", h.ID),
		zap.String("date", date.String()),
		zap.Bool("completed", done),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("habit", dto.FromHabit(h)))
}

func (s *HabitHandler) GetCompletions(w http.ResponseWriter, r *http.Request) {
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

	from, err := dates.Parse(r.URL.Query().Get("from"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное значение from")
		return
	}
	to, err := dates.Parse(r.URL.Query().Get("to"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное значение to")
		return
	}

	comps, err := s.HabitService.GetCompletions(r.Context(), userID, id, from, to)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "get_completions"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("completions", dto.FromCompletions(comps)))
}

func (s *HabitHandler) DeleteHabitByID(w http.ResponseWriter, r *http.Request) {
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

	logger.Info("HTTP: Обращение к сервису для удаления привычки")

	if err := s.HabitService.DeleteHabitByID(r.Context(), userID, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "delete_habit"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Привычка удалена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
