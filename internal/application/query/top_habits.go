package query

import (
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
)

// topHabitsLimit - сколько привычек показывается в сводках.
const topHabitsLimit = 3

// TopHabits оставляет не больше limit привычек, отбрасывая нулевые.
// Срез уже отсортирован хранилищем по убыванию; порядок сохраняется.
func TopHabits(perHabit []checkin.HabitCount, limit int) []checkin.HabitCount {
	out := make([]checkin.HabitCount, 0, limit)
	for _, hc := range perHabit {
		if hc.Count <= 0 {
			continue
		}
		out = append(out, hc)
		if len(out) == limit {
			break
		}
	}
	return out
}
