// Package checkin содержит доменную модель ежедневных отметок привычек.
package checkin

import (
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// dayLayout - календарная дата в формате YYYY-MM-DD.
const dayLayout = "2006-01-02"

// Day представляет календарный день в часовом поясе бота.
type Day string

// DayOf возвращает день, на который приходится момент t.
func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// ParseDay разбирает строку YYYY-MM-DD.
func ParseDay(s string) (Day, bool) {
	if _, err := time.Parse(dayLayout, s); err != nil {
		return "", false
	}
	return Day(s), true
}

// IsValid проверяет формат дня.
func (d Day) IsValid() bool {
	_, err := time.Parse(dayLayout, string(d))
	return err == nil
}

// String возвращает строковое представление дня.
func (d Day) String() string {
	return string(d)
}

// Window возвращает n дней подряд, заканчивая днём момента t включительно.
func Window(t time.Time, n int) []Day {
	days := make([]Day, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, DayOf(t.AddDate(0, 0, -i)))
	}
	return days
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Mark - одна отметка: ученик выполнил привычку в конкретный день.
type Mark struct {
	UserID    user.ID
	Day       Day
	HabitKey  string
	CreatedAt time.Time
}

// DaySet - множество ключей привычек, отмеченных за один день.
type DaySet map[string]struct{}

// Has проверяет, отмечена ли привычка.
func (s DaySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// ══════════════════════════════════════════════════════════════════════════════
// STATISTICS
// ══════════════════════════════════════════════════════════════════════════════

// HabitCount - количество отметок одной привычки.
type HabitCount struct {
	Key   string
	Count int
}

// UserStats - агрегаты одного ученика.
type UserStats struct {
	// TotalMarks - всего отметок за всё время.
	TotalMarks int

	// ActiveDays - количество разных дней хотя бы с одной отметкой.
	ActiveDays int

	// PerHabit - отметки по привычкам, по убыванию количества.
	PerHabit []HabitCount
}

// ScopeStats - агрегаты по области (класс или вся школа).
type ScopeStats struct {
	// Members - количество учеников в области.
	Members int

	// TotalMarks - всего отметок.
	TotalMarks int

	// ActiveDays - количество разных дней хотя бы с одной отметкой.
	ActiveDays int

	// PerHabit - отметки по привычкам, по убыванию количества.
	PerHabit []HabitCount
}
