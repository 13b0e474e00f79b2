package query

import (
	"context"
	"errors"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECKIN SHEET QUERY
// Лист чек-ина на день: каталог привычек плюс текущие отметки ученика.
// Из него рисуется inline-клавиатура с ✅/☐.
// ══════════════════════════════════════════════════════════════════════════════

// CheckinSheetQuery содержит параметры запроса листа.
type CheckinSheetQuery struct {
	// UserID - идентификатор Telegram.
	UserID user.ID

	// Day - день чек-ина.
	Day checkin.Day
}

// Validate проверяет корректность запроса.
func (q *CheckinSheetQuery) Validate() error {
	if !q.UserID.IsValid() {
		return errors.New("user_id is required")
	}
	if !q.Day.IsValid() {
		return errors.New("day must be YYYY-MM-DD")
	}
	return nil
}

// CheckinSheetItem - одна строка листа.
type CheckinSheetItem struct {
	Habit  habit.Habit
	Marked bool
}

// CheckinSheet - лист чек-ина на день.
type CheckinSheet struct {
	Day    checkin.Day
	Class  user.Class
	Items  []CheckinSheetItem
	Marked int
}

// CheckinSheetHandler обрабатывает CheckinSheetQuery.
type CheckinSheetHandler struct {
	users    user.Repository
	checkins checkin.Repository
	catalog  *habit.Catalog
}

// NewCheckinSheetHandler создаёт обработчик.
func NewCheckinSheetHandler(users user.Repository, checkins checkin.Repository, catalog *habit.Catalog) *CheckinSheetHandler {
	return &CheckinSheetHandler{
		users:    users,
		checkins: checkins,
		catalog:  catalog,
	}
}

// Handle выполняет запрос.
// Возвращает ErrNotGrouped, если ученик не выбрал класс: чек-ин без
// класса запрещён, иначе его отметки не попадут в классовую статистику.
func (h *CheckinSheetHandler) Handle(ctx context.Context, q CheckinSheetQuery) (*CheckinSheet, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("checkin", "Sheet", shared.ErrInvalidInput, "invalid query", err)
	}

	class, err := RequireClass(ctx, h.users, q.UserID)
	if err != nil {
		return nil, err
	}

	marks, err := h.checkins.DayMarks(ctx, q.UserID, q.Day)
	if err != nil {
		return nil, err
	}

	sheet := &CheckinSheet{
		Day:   q.Day,
		Class: class,
		Items: make([]CheckinSheetItem, 0, h.catalog.Len()),
	}
	for _, hb := range h.catalog.Habits() {
		marked := marks.Has(hb.Key)
		if marked {
			sheet.Marked++
		}
		sheet.Items = append(sheet.Items, CheckinSheetItem{Habit: hb, Marked: marked})
	}

	return sheet, nil
}
