package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/command"
	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
	"github.com/ecohabit-hub/ecohabit-bot/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Диспетчер типизированных действий. Каждый вариант Inbound.Action
// обрабатывается ровно одной веткой; ошибки домена переводятся в
// пользовательские ответы здесь, а не в обработчиках приложения.
// ══════════════════════════════════════════════════════════════════════════════

// RouterDependencies contains the application handlers the router dispatches to.
type RouterDependencies struct {
	RegisterUser *command.RegisterUserHandler
	ChooseClass  *command.ChooseClassHandler
	ToggleHabit  *command.ToggleHabitHandler

	CheckinSheet *query.CheckinSheetHandler
	MyStats      *query.MyStatsHandler
	ClassStats   *query.ClassStatsHandler
	SchoolStats  *query.SchoolStatsHandler

	Catalog  *habit.Catalog
	Classes  []string
	Location *time.Location
	Logger   *slog.Logger
}

// Router dispatches parsed inbound actions to application handlers.
type Router struct {
	deps   RouterDependencies
	client *telegram.Client
	logger *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewRouter creates a router bound to a Telegram client.
func NewRouter(client *telegram.Client, deps RouterDependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		deps:   deps,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Dispatch routes one inbound action. A returned error means the action
// failed after the user was (best effort) notified.
func (r *Router) Dispatch(ctx context.Context, in Inbound) error {
	switch action := in.Action.(type) {
	case FirstContact:
		return r.handleFirstContact(ctx, in, action)
	case HelpRequested:
		return r.handleHelp(ctx, in)
	case ClassChangeRequested:
		return r.handleClassChange(ctx, in)
	case ClassChosen:
		return r.handleClassChosen(ctx, in, action)
	case CheckinRequested:
		return r.handleCheckinRequested(ctx, in, action)
	case HabitToggled:
		return r.handleHabitToggled(ctx, in, action)
	case CheckinDone:
		return r.handleCheckinDone(ctx, in, action)
	case MyStatsRequested:
		return r.handleMyStats(ctx, in, action)
	case ClassStatsRequested:
		return r.handleClassStats(ctx, in, action)
	case SchoolStatsRequested:
		return r.handleSchoolStats(ctx, in)
	default:
		r.logger.Warn("unhandled action type", "chat_id", in.ChatID)
		return nil
	}
}

// today returns the current check-in day in the bot's timezone.
func (r *Router) today() checkin.Day {
	return checkin.DayOf(r.now().In(r.deps.Location))
}

// ─────────────────────────────────────────────────────────────────────────────
// Onboarding
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleFirstContact(ctx context.Context, in Inbound, action FirstContact) error {
	result, err := r.deps.RegisterUser.Handle(ctx, command.RegisterUserCommand{
		UserID:      action.UserID,
		DisplayName: action.DisplayName,
	})
	if err != nil {
		return r.replyError(ctx, in, err)
	}

	menu := presenter.MainMenu(MenuCheckin, MenuMyStats, MenuClassStats, MenuSchool)
	if _, err := r.client.SendWithReplyKeyboard(ctx, in.ChatID, presenter.StartGreeting(action.DisplayName), menu); err != nil {
		return err
	}

	if !result.HasClass {
		return r.sendClassPrompt(ctx, in.ChatID)
	}
	return nil
}

func (r *Router) handleHelp(ctx context.Context, in Inbound) error {
	_, err := r.client.SendHTML(ctx, in.ChatID, presenter.Help())
	return err
}

func (r *Router) handleClassChange(ctx context.Context, in Inbound) error {
	return r.sendClassPrompt(ctx, in.ChatID)
}

func (r *Router) handleClassChosen(ctx context.Context, in Inbound, action ClassChosen) error {
	err := r.deps.ChooseClass.Handle(ctx, command.ChooseClassCommand{
		UserID: action.UserID,
		Class:  action.Class,
	})

	switch {
	case err == nil:
		r.answerCallback(ctx, in, "")
		if in.MessageID > 0 {
			_, err = r.client.EditMessageText(ctx, in.ChatID, in.MessageID, presenter.ClassConfirmed(string(action.Class)), "HTML", nil)
			return err
		}
		_, err = r.client.SendHTML(ctx, in.ChatID, presenter.ClassConfirmed(string(action.Class)))
		return err

	case shared.IsInvalidGroup(err):
		r.answerCallbackAlert(ctx, in, presenter.InvalidClass())
		return nil

	default:
		return r.replyError(ctx, in, err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Check-in
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleCheckinRequested(ctx context.Context, in Inbound, action CheckinRequested) error {
	day := r.today()
	sheet, err := r.deps.CheckinSheet.Handle(ctx, query.CheckinSheetQuery{UserID: action.UserID, Day: day})
	if err != nil {
		if shared.IsNotGrouped(err) {
			return r.sendNoClass(ctx, in.ChatID)
		}
		return r.replyError(ctx, in, err)
	}

	params := telegram.SendMessageParams{
		ChatID:      in.ChatID,
		Text:        presenter.CheckinHeader(day, r.deps.Location),
		ParseMode:   "HTML",
		ReplyMarkup: presenter.CheckinKeyboard(day, sheet.Items),
	}
	_, err = r.client.SendMessage(ctx, params)
	return err
}

func (r *Router) handleHabitToggled(ctx context.Context, in Inbound, action HabitToggled) error {
	marked, err := r.deps.ToggleHabit.Handle(ctx, command.ToggleHabitCommand{
		UserID:   action.UserID,
		Day:      action.Day,
		HabitKey: action.HabitKey,
	})
	if err != nil {
		if shared.IsValidation(err) {
			r.answerCallbackAlert(ctx, in, presenter.GenericError())
			return nil
		}
		return r.replyError(ctx, in, err)
	}

	title, ok := r.deps.Catalog.Title(action.HabitKey)
	if !ok {
		title = action.HabitKey
	}
	r.answerCallback(ctx, in, presenter.ToggleAck(title, marked))

	// Redraw the sheet so the checkbox reflects the new state.
	sheet, err := r.deps.CheckinSheet.Handle(ctx, query.CheckinSheetQuery{UserID: action.UserID, Day: action.Day})
	if err != nil {
		return err
	}

	if in.MessageID > 0 {
		_, err = r.client.EditMessageKeyboard(ctx, in.ChatID, in.MessageID, presenter.CheckinKeyboard(action.Day, sheet.Items))
	}
	return err
}

func (r *Router) handleCheckinDone(ctx context.Context, in Inbound, action CheckinDone) error {
	sheet, err := r.deps.CheckinSheet.Handle(ctx, query.CheckinSheetQuery{UserID: action.UserID, Day: action.Day})
	if err != nil {
		if shared.IsNotGrouped(err) {
			r.answerCallback(ctx, in, "")
			return r.sendNoClass(ctx, in.ChatID)
		}
		return r.replyError(ctx, in, err)
	}

	r.answerCallback(ctx, in, "")

	if in.MessageID > 0 {
		_, err = r.client.EditMessageText(ctx, in.ChatID, in.MessageID, presenter.CheckinDone(sheet.Marked), "HTML", nil)
		return err
	}
	_, err = r.client.SendHTML(ctx, in.ChatID, presenter.CheckinDone(sheet.Marked))
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Stats
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) handleMyStats(ctx context.Context, in Inbound, action MyStatsRequested) error {
	result, err := r.deps.MyStats.Handle(ctx, query.MyStatsQuery{UserID: action.UserID})
	if err != nil {
		return r.replyError(ctx, in, err)
	}

	_, err = r.client.SendHTML(ctx, in.ChatID, presenter.MyStats(result, r.deps.Catalog))
	return err
}

func (r *Router) handleClassStats(ctx context.Context, in Inbound, action ClassStatsRequested) error {
	result, err := r.deps.ClassStats.Handle(ctx, query.ClassStatsQuery{UserID: action.UserID})
	if err != nil {
		if shared.IsNotGrouped(err) {
			return r.sendNoClass(ctx, in.ChatID)
		}
		return r.replyError(ctx, in, err)
	}

	_, err = r.client.SendHTML(ctx, in.ChatID, presenter.ClassStats(result, r.deps.Catalog))
	return err
}

func (r *Router) handleSchoolStats(ctx context.Context, in Inbound) error {
	result, err := r.deps.SchoolStats.Handle(ctx)
	if err != nil {
		return r.replyError(ctx, in, err)
	}

	_, err = r.client.SendHTML(ctx, in.ChatID, presenter.SchoolStats(result, r.deps.Catalog))
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *Router) sendClassPrompt(ctx context.Context, chatID int64) error {
	params := telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        presenter.ClassPrompt(),
		ReplyMarkup: presenter.ClassKeyboard(r.deps.Classes),
	}
	_, err := r.client.SendMessage(ctx, params)
	return err
}

func (r *Router) sendNoClass(ctx context.Context, chatID int64) error {
	params := telegram.SendMessageParams{
		ChatID:      chatID,
		Text:        presenter.NoClass(),
		ReplyMarkup: presenter.ClassKeyboard(r.deps.Classes),
	}
	_, err := r.client.SendMessage(ctx, params)
	return err
}

// replyError tells the user something broke and returns the original error
// so the bot loop logs it.
func (r *Router) replyError(ctx context.Context, in Inbound, err error) error {
	if in.CallbackID != "" {
		r.answerCallbackAlert(ctx, in, presenter.GenericError())
	} else if in.ChatID > 0 {
		_, _ = r.client.SendHTML(ctx, in.ChatID, presenter.GenericError())
	}
	return err
}

func (r *Router) answerCallback(ctx context.Context, in Inbound, text string) {
	if in.CallbackID != "" {
		_ = r.client.AnswerCallbackQuery(ctx, in.CallbackID, text, false)
	}
}

func (r *Router) answerCallbackAlert(ctx context.Context, in Inbound, text string) {
	if in.CallbackID != "" {
		_ = r.client.AnswerCallbackQuery(ctx, in.CallbackID, text, true)
	}
}
