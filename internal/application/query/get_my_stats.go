package query

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// MY STATS QUERY
// Личная статистика ученика: всего отметок, активных дней и топ привычек.
// ══════════════════════════════════════════════════════════════════════════════

// MyStatsQuery содержит параметры запроса.
type MyStatsQuery struct {
	// UserID - идентификатор Telegram.
	UserID user.ID
}

// Validate проверяет корректность запроса.
func (q *MyStatsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// MyStatsResult - результат запроса.
type MyStatsResult struct {
	// TotalMarks - всего отметок за всё время.
	TotalMarks int

	// ActiveDays - количество разных дней с отметками.
	ActiveDays int

	// TopHabits - до трёх привычек по убыванию, без нулевых.
	TopHabits []checkin.HabitCount
}

// MyStatsHandler обрабатывает MyStatsQuery.
type MyStatsHandler struct {
	checkins checkin.Repository
}

// NewMyStatsHandler создаёт обработчик.
func NewMyStatsHandler(checkins checkin.Repository) *MyStatsHandler {
	return &MyStatsHandler{checkins: checkins}
}

// Handle выполняет запрос. Для ученика без отметок (в том числе
// неизвестного боту) возвращаются нули и пустой топ.
func (h *MyStatsHandler) Handle(ctx context.Context, q MyStatsQuery) (*MyStatsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("checkin", "MyStats", shared.ErrInvalidInput, "invalid query", err)
	}

	stats, err := h.checkins.UserStats(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	return &MyStatsResult{
		TotalMarks: stats.TotalMarks,
		ActiveDays: stats.ActiveDays,
		TopHabits:  TopHabits(stats.PerHabit, topHabitsLimit),
	}, nil
}
