package query

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS STATS QUERY
// Статистика класса, к которому принадлежит спрашивающий. Класс не
// передаётся снаружи: его определяет хранилище по ученику.
// ══════════════════════════════════════════════════════════════════════════════

// ClassStatsQuery содержит параметры запроса.
type ClassStatsQuery struct {
	// UserID - идентификатор спрашивающего.
	UserID user.ID
}

// Validate проверяет корректность запроса.
func (q *ClassStatsQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	return nil
}

// ClassStatsResult - результат запроса.
type ClassStatsResult struct {
	// Class - класс спрашивающего.
	Class user.Class

	// Members - учеников в классе.
	Members int

	// TotalMarks - всего отметок класса.
	TotalMarks int

	// ActiveDays - количество разных дней с отметками.
	ActiveDays int

	// TopHabits - до трёх привычек по убыванию, без нулевых.
	TopHabits []checkin.HabitCount
}

// ClassStatsHandler обрабатывает ClassStatsQuery.
type ClassStatsHandler struct {
	users    user.Repository
	checkins checkin.Repository
}

// NewClassStatsHandler создаёт обработчик.
func NewClassStatsHandler(users user.Repository, checkins checkin.Repository) *ClassStatsHandler {
	return &ClassStatsHandler{users: users, checkins: checkins}
}

// Handle выполняет запрос.
// Возвращает ErrNotGrouped, если спрашивающий не выбрал класс.
func (h *ClassStatsHandler) Handle(ctx context.Context, q ClassStatsQuery) (*ClassStatsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("checkin", "ClassStats", shared.ErrInvalidInput, "invalid query", err)
	}

	class, err := RequireClass(ctx, h.users, q.UserID)
	if err != nil {
		return nil, err
	}

	stats, err := h.checkins.ScopeStats(ctx, user.ScopeClass(class))
	if err != nil {
		return nil, err
	}

	return &ClassStatsResult{
		Class:      class,
		Members:    stats.Members,
		TotalMarks: stats.TotalMarks,
		ActiveDays: stats.ActiveDays,
		TopHabits:  TopHabits(stats.PerHabit, topHabitsLimit),
	}, nil
}
