package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"achieveTracker/internal/logger"
	"achieveTracker/internal/models/habit"
	"achieveTracker/internal/models/task"
)

// NewDB открывает файл SQLite и прогоняет миграции схемы.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "achieve.db"
	}

	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("открытие БД: %w", err)
	}

	if err := db.AutoMigrate(&task.Task{}, &habit.Habit{}, &habit.Completion{}); err != nil {
		return nil, fmt.Errorf("миграция БД: %w", err)
	}

	logger.Info("Repository: Локальная БД SQLite готова")
	return db, nil
}

// ensureDir создаёт каталог для файла БД, если его ещё нет.
func ensureDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога БД %q: %w", dir, err)
	}
	return nil
}

// slowQuery логирует запросы дольше порога.
func slowQuery(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		logger.Warn("Repository: Медленный запрос",
			zap.String("op", op),
			zap.Duration("ms", elapsed))
	}
}
