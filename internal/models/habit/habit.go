package habit

import (
	"strings"
	"time"

	"achieveTracker/internal/models/dates"
)

// FrequencyKind — вид расписания привычки.
type FrequencyKind string

const (
	// Ежедневно.
	Daily FrequencyKind = "daily"
	// По конкретным дням недели (маска WeekDays).
	Weekly FrequencyKind = "weekly"
)

// WeekdayMask — 7-битная маска дней недели: бит 0 = понедельник ... бит 6 = воскресенье.
type WeekdayMask int

const (
	Monday WeekdayMask = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	AllWeek = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday
)

// MaskFor возвращает бит для дня недели стандартной библиотеки
// (у time.Weekday воскресенье = 0, у маски понедельник = бит 0).
func MaskFor(wd time.Weekday) WeekdayMask {
	return 1 << ((int(wd) + 6) % 7)
}

func (m WeekdayMask) Contains(wd time.Weekday) bool {
	return m&MaskFor(wd) != 0
}

func (m WeekdayMask) Valid() bool {
	return m > 0 && m <= AllWeek
}

func (m WeekdayMask) String() string {
	names := []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
	days := make([]string, 0, 7)
	for i, name := range names {
		if m&(1<<i) != 0 {
			days = append(days, name)
		}
	}
	return strings.Join(days, ",")
}

// Frequency — помеченный вариант расписания: Daily либо Weekly с маской дней.
type Frequency struct {
	Kind     FrequencyKind `json:"kind"`
	WeekDays WeekdayMask   `json:"week_days,omitempty"`
}

func EveryDay() Frequency {
	return Frequency{Kind: Daily}
}

func OnWeekdays(mask WeekdayMask) Frequency {
	return Frequency{Kind: Weekly, WeekDays: mask}
}

func (f Frequency) Valid() bool {
	switch f.Kind {
	case Daily:
		return true
	case Weekly:
		return f.WeekDays.Valid()
	}
	return false
}

// EligibleOn сообщает, требует ли расписание действия в указанный день.
func (f Frequency) EligibleOn(d dates.Date) bool {
	switch f.Kind {
	case Daily:
		return true
	case Weekly:
		return f.WeekDays.Contains(d.Weekday())
	}
	return false
}

// Reminder — время напоминания в течение дня (локальное для пользователя).
type Reminder struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (r *Reminder) Valid() bool {
	return r == nil || (r.Hour >= 0 && r.Hour < 24 && r.Minute >= 0 && r.Minute < 60)
}

// Habit — повторяющаяся привычка пользователя со счётчиками серий.
// CurrentStreak и LongestStreak — кэш: источник истины — история отметок.
type Habit struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	RemoteID      int64         `json:"remote_id" gorm:"index"`
	UserID        int64         `json:"user_id" gorm:"index"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Kind          FrequencyKind `json:"kind"`
	WeekDays      WeekdayMask   `json:"week_days"`
	Reminder      *Reminder     `json:"reminder,omitempty" gorm:"embedded;embeddedPrefix:reminder_"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	Deleted       bool          `json:"deleted" gorm:"index;default:false"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (h *Habit) Frequency() Frequency {
	return Frequency{Kind: h.Kind, WeekDays: h.WeekDays}
}

func (h *Habit) SetFrequency(f Frequency) {
	h.Kind = f.Kind
	h.WeekDays = f.WeekDays
}

func (h *Habit) Synced() bool {
	return h.RemoteID != 0
}

// Completion — отметка о выполнении привычки за календарный день.
// Составной ключ (HabitID, Date); отсутствие записи = "не выполнено".
type Completion struct {
	HabitID     uint       `json:"habit_id" gorm:"primaryKey;autoIncrement:false"`
	Date        dates.Date `json:"date" gorm:"primaryKey;type:text"`
	IsCompleted bool       `json:"is_completed"`
}
