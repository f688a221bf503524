package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"achieveTracker/internal/config"
	"achieveTracker/internal/handlers"
	"achieveTracker/internal/logger"
	"achieveTracker/internal/middleware"
	"achieveTracker/internal/remote"
	"achieveTracker/internal/repository"
	"achieveTracker/internal/repository/inmemory"
	"achieveTracker/internal/repository/sqlite"
	"achieveTracker/internal/service"
	"achieveTracker/internal/streak"
	syncer "achieveTracker/internal/sync"
	"achieveTracker/internal/worker"
)

// App собирает все зависимости и владеет их жизненным циклом.
type App struct {
	config    *config.Config
	server    *http.Server
	worker    *worker.SyncWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	taskRepo, habitRepo, err := a.buildRepositories()
	if err != nil {
		return err
	}

	calc := streak.NewCalculator(
		streak.ParsePolicy(a.config.Sync.StreakPolicy),
		a.config.Sync.StreakLookbackDays,
	)

	taskService := service.NewTaskService(taskRepo)
	habitService := service.NewHabitService(habitRepo, calc)

	client := remote.NewClient(a.config.Remote.BaseURL, a.config.Remote.Timeout.Std(), a.config.Remote.MaxRetries)
	engine := syncer.NewEngine(taskRepo, habitRepo, client.Tasks(), client.Habits())

	interval := a.config.Sync.Interval.Std()
	a.worker = worker.NewSyncWorker(engine, taskRepo, habitRepo, &interval)
	if interval > 0 {
		if err := a.worker.Start(ctx); err != nil {
			return fmt.Errorf("запуск воркера: %w", err)
		}
		a.shutdowns = append(a.shutdowns, a.worker.Stop)
	}

	taskHandler := handlers.NewTaskHandler(taskService)
	habitHandler := handlers.NewHabitHandler(habitService)
	syncHandler := handlers.NewSyncHandler(engine, taskService, habitService)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.buildRouter(taskHandler, habitHandler, syncHandler),
	}

	return nil
}

func (a *App) buildRepositories() (repository.TaskRepository, repository.HabitRepository, error) {
	switch a.config.Repository.Type {
	case "inmemory":
		logger.Info("App: Используется хранилище в памяти")
		return inmemory.NewTaskStorage(), inmemory.NewHabitStorage(), nil
	case "sqlite", "":
		db, err := sqlite.NewDB(a.config.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("открытие базы: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			if sqlDB, err := db.DB(); err == nil {
				logger.Info("Завершение работы базы данных...")
				sqlDB.Close()
			}
		})
		logger.Info("App: Используется SQLite", zap.String("dsn", a.config.Database.DSN))
		return sqlite.NewTaskStorage(db), sqlite.NewHabitStorage(db), nil
	default:
		return nil, nil, fmt.Errorf("неизвестный тип хранилища: %s", a.config.Repository.Type)
	}
}

func (a *App) buildRouter(taskHandler *handlers.TaskHandler, habitHandler *handlers.HabitHandler, syncHandler *handlers.SyncHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.GetAllTasks) // GET /tasks
		r.Post("/", taskHandler.PostTask)   // POST /tasks

		r.Get("/quadrant/{quadrant}", taskHandler.GetTasksByQuadrant) // GET /tasks/quadrant/{quadrant}
		r.Get("/today", taskHandler.GetTodayTasks)         // GET /tasks/today
		r.Get("/overdue", taskHandler.GetOverdueTasks)     // GET /tasks/overdue

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/complete", taskHandler.CompleteTask) // POST /tasks/{id}/complete
			r.Post("/reopen", taskHandler.ReopenTask)     // POST /tasks/{id}/reopen
		})
	})

	r.Route("/habits", func(r chi.Router) {
		r.Get("/", habitHandler.GetAllHabits) // GET /habits
		r.Post("/", habitHandler.PostHabit)   // POST /habits

		r.Get("/today", habitHandler.GetTodayHabits) // GET /habits/today

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", habitHandler.GetHabitByID)       // GET /habits/{id}
			r.Put("/", habitHandler.UpdateHabitByID)    // PUT /habits/{id}
			r.Delete("/", habitHandler.DeleteHabitByID) // DELETE /habits/{id}

			r.Get("/completions", habitHandler.GetCompletions)             // GET /habits/{id}/completions?from=&to=
			r.Put("/completions/{date}", habitHandler.MarkCompletion)      // PUT /habits/{id}/completions/{date}
			r.Delete("/completions/{date}", habitHandler.UnmarkCompletion) // DELETE /habits/{id}/completions/{date}
		})
	})

	r.Get("/search", syncHandler.Search)     // GET /search?q=
	r.Post("/sync", syncHandler.TriggerSync) // POST /sync

	r.Get("/health", syncHandler.HealthCheck)

	return r
}

// Run блокируется до отмены контекста, затем гасит сервер и зависимости.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("сервер: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	a.Shutdown()
	return nil
}

// Shutdown вызывает функции завершения в обратном порядке регистрации.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
