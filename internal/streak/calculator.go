package streak

import (
	"achieveTracker/internal/models/dates"
	"achieveTracker/internal/models/habit"
)

// Policy — как учитывать ещё не закрытый "сегодня" при расчёте текущей серии.
type Policy string

const (
	// PolicyGraceToday — незавершённый asOf не ломает серию, а пропускается:
	// у пользователя ещё есть время отметиться.
	PolicyGraceToday Policy = "grace"
	// PolicyStrictToday — asOf считается наравне с прошлыми днями.
	PolicyStrictToday Policy = "strict"
)

// ParsePolicy сопоставляет строку конфигурации с политикой;
// нераспознанное значение падает в PolicyGraceToday.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyStrictToday {
		return PolicyStrictToday
	}
	return PolicyGraceToday
}

// DefaultLookbackDays — глубина обхода истории по умолчанию.
const DefaultLookbackDays = 365

// Calculator считает серии по истории отметок. Без состояния и без побочных
// эффектов: единственный источник истины — переданные отметки.
type Calculator struct {
	policy   Policy
	lookback int
}

func NewCalculator(policy Policy, lookbackDays int) *Calculator {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Calculator{policy: policy, lookback: lookbackDays}
}

// Result — рассчитанные серии привычки.
type Result struct {
	Current int
	Longest int
}

// Compute считает текущую и максимальную серию на дату asOf.
//
// Текущая серия — число подряд выполненных подходящих по расписанию дней,
// заканчивающихся в asOf. Неподходящие расписанию дни серию не рвут и не
// удлиняют. Максимальная серия монотонна: она не меньше текущей и не меньше
// ранее сохранённого значения storedLongest. Обход ограничен окном lookback:
// история старше окна учитывается только через storedLongest.
func (c *Calculator) Compute(
	completions []habit.Completion,
	freq habit.Frequency,
	createdAt dates.Date,
	asOf dates.Date,
	storedLongest int,
) Result {
	done := make(map[dates.Date]struct{}, len(completions))
	for _, comp := range completions {
		if comp.IsCompleted {
			done[comp.Date] = struct{}{}
		}
	}

	floor := asOf.AddDays(-c.lookback)
	if !createdAt.IsZero() && floor.Before(createdAt) {
		floor = createdAt
	}

	current := c.currentRun(done, freq, floor, asOf)
	longest := c.longestRun(done, freq, floor, asOf)

	if current > longest {
		longest = current
	}
	if storedLongest > longest {
		longest = storedLongest
	}
	return Result{Current: current, Longest: longest}
}

// currentRun идёт от asOf назад, пока подходящие дни выполнены.
func (c *Calculator) currentRun(done map[dates.Date]struct{}, freq habit.Frequency, floor, asOf dates.Date) int {
	run := 0
	for d := asOf; !d.Before(floor); d = d.AddDays(-1) {
		if !freq.EligibleOn(d) {
			continue
		}
		if _, ok := done[d]; ok {
			run++
			continue
		}
		if d.Equal(asOf) && c.policy == PolicyGraceToday {
			continue
		}
		break
	}
	return run
}

// longestRun идёт от floor вперёд и ищет самый длинный отрезок выполненных
// подходящих дней. Незакрытый asOf при льготной политике отрезок не рвёт.
func (c *Calculator) longestRun(done map[dates.Date]struct{}, freq habit.Frequency, floor, asOf dates.Date) int {
	best, run := 0, 0
	for d := floor; !d.After(asOf); d = d.AddDays(1) {
		if !freq.EligibleOn(d) {
			continue
		}
		if _, ok := done[d]; ok {
			run++
			if run > best {
				best = run
			}
			continue
		}
		if d.Equal(asOf) && c.policy == PolicyGraceToday {
			continue
		}
		run = 0
	}
	return best
}
