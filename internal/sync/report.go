package sync

import (
	"time"

	"go.uber.org/multierr"
)

// Report — итог одного прохода синхронизации.
// Ошибки отдельных записей накапливаются в Err и проход не роняют;
// проход считается неудачным целиком только при отказе локального хранилища.
type Report struct {
	SyncID string
	UserID int64

	TasksPushed  int
	TasksPulled  int
	HabitsPushed int
	HabitsPulled int
	Purged       int

	StartedAt  time.Time
	FinishedAt time.Time

	Err error
}

func (r *Report) addErr(err error) {
	r.Err = multierr.Append(r.Err, err)
}

// Clean сообщает, что проход обошёлся без по-записных ошибок.
func (r *Report) Clean() bool {
	return r.Err == nil
}

// ErrorCount — число накопленных по-записных ошибок.
func (r *Report) ErrorCount() int {
	return len(multierr.Errors(r.Err))
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
