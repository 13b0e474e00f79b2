package telegram

import (
	"context"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
	"github.com/ecohabit-hub/ecohabit-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMINDER SENDER
// Адаптер для планировщика: шлёт вечерние напоминания через того же
// клиента и с теми же клавиатурами, что и обычные ответы бота.
// ══════════════════════════════════════════════════════════════════════════════

// ReminderSender delivers scheduled reminder prompts.
// In private chats the chat ID equals the user's Telegram ID, so no chat
// lookup is needed.
type ReminderSender struct {
	client   *telegram.Client
	catalog  *habit.Catalog
	classes  []string
	location *time.Location
}

// NewReminderSender creates a sender for the daily reminder job.
func NewReminderSender(client *telegram.Client, catalog *habit.Catalog, classes []string, location *time.Location) *ReminderSender {
	return &ReminderSender{
		client:   client,
		catalog:  catalog,
		classes:  classes,
		location: location,
	}
}

// SendClassPrompt asks a user without a class to pick one.
func (s *ReminderSender) SendClassPrompt(ctx context.Context, id user.ID) error {
	params := telegram.SendMessageParams{
		ChatID:      int64(id),
		Text:        presenter.ReminderClass(),
		ReplyMarkup: presenter.ClassKeyboard(s.classes),
	}
	if _, err := s.client.SendMessage(ctx, params); err != nil {
		return shared.WrapError("telegram", "SendClassPrompt", shared.ErrDeliveryFailure, "class prompt failed", err)
	}
	return nil
}

// SendCheckinPrompt sends the evening check-in sheet prefilled with the
// marks the user already made today.
func (s *ReminderSender) SendCheckinPrompt(ctx context.Context, id user.ID, day checkin.Day, marks checkin.DaySet) error {
	items := make([]query.CheckinSheetItem, 0, s.catalog.Len())
	for _, h := range s.catalog.Habits() {
		items = append(items, query.CheckinSheetItem{Habit: h, Marked: marks.Has(h.Key)})
	}

	params := telegram.SendMessageParams{
		ChatID:      int64(id),
		Text:        presenter.ReminderCheckin(day, s.location),
		ParseMode:   "HTML",
		ReplyMarkup: presenter.CheckinKeyboard(day, items),
	}
	if _, err := s.client.SendMessage(ctx, params); err != nil {
		return shared.WrapError("telegram", "SendCheckinPrompt", shared.ErrDeliveryFailure, "checkin prompt failed", err)
	}
	return nil
}
