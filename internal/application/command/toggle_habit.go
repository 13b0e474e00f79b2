package command

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOGGLE HABIT COMMAND
// Переключение одной отметки: стояла - снимаем, не стояла - ставим.
// ══════════════════════════════════════════════════════════════════════════════

// StatsInvalidator сбрасывает кэшированные агрегаты после записи.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ToggleHabitCommand содержит переключаемую отметку.
type ToggleHabitCommand struct {
	// UserID - идентификатор Telegram.
	UserID user.ID

	// Day - день отметки.
	Day checkin.Day

	// HabitKey - ключ привычки из каталога.
	HabitKey string
}

// Validate проверяет корректность команды.
func (c *ToggleHabitCommand) Validate() error {
	if !c.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	if !c.Day.IsValid() {
		return errors.New("day must be YYYY-MM-DD")
	}
	if c.HabitKey == "" {
		return errors.New("habit_key is required")
	}
	return nil
}

// ToggleHabitHandler обрабатывает ToggleHabitCommand.
type ToggleHabitHandler struct {
	checkins    checkin.Repository
	catalog     *habit.Catalog
	invalidator StatsInvalidator // nil, если кэш отключён
}

// NewToggleHabitHandler создаёт обработчик.
func NewToggleHabitHandler(checkins checkin.Repository, catalog *habit.Catalog, invalidator StatsInvalidator) *ToggleHabitHandler {
	return &ToggleHabitHandler{
		checkins:    checkins,
		catalog:     catalog,
		invalidator: invalidator,
	}
}

// Handle выполняет команду и возвращает новое состояние отметки.
//
// Чтение и запись не атомарны: два одновременных переключения одной
// клетки могут прочитать одно и то же состояние. SetMark идемпотентна,
// поэтому гонка приводит лишь к одинаковому итогу, а не к порче данных.
func (h *ToggleHabitHandler) Handle(ctx context.Context, cmd ToggleHabitCommand) (nowMarked bool, err error) {
	if err := cmd.Validate(); err != nil {
		return false, shared.WrapError("checkin", "Toggle", shared.ErrInvalidInput, "invalid command", err)
	}

	if !h.catalog.Contains(cmd.HabitKey) {
		return false, shared.ErrUnknownHabit
	}

	marks, err := h.checkins.DayMarks(ctx, cmd.UserID, cmd.Day)
	if err != nil {
		return false, err
	}

	nowMarked = !marks.Has(cmd.HabitKey)
	if err := h.checkins.SetMark(ctx, cmd.UserID, cmd.Day, cmd.HabitKey, nowMarked); err != nil {
		return false, err
	}

	if h.invalidator != nil {
		// Ошибка кэша не должна ломать чек-ин: агрегаты истекут по TTL.
		_ = h.invalidator.Invalidate(ctx)
	}

	return nowMarked, nil
}
