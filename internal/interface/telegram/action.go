package telegram

import (
	"strings"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// INBOUND ACTIONS
// Каждое входящее обновление разбирается в типизированный вариант до того,
// как попадёт в диспетчер. Неразборчивые обновления отбрасываются на этапе
// парсинга, поэтому обработчики имеют дело только с валидными действиями.
// ══════════════════════════════════════════════════════════════════════════════

// Reply-menu button labels. They double as inbound commands: pressing a
// menu button sends its label as a plain text message.
const (
	MenuCheckin    = "✅ Чек-ин"
	MenuMyStats    = "📊 Моя статистика"
	MenuClassStats = "👥 Класс"
	MenuSchool     = "🏫 Школа"
)

// Callback data prefixes.
const (
	callbackClassPrefix  = "class:"
	callbackTogglePrefix = "toggle:"
	callbackDonePrefix   = "done:"
)

// Action is a parsed inbound action. Exactly one concrete type matches
// each incoming update.
type Action interface {
	isAction()
}

// FirstContact - пользователь написал /start.
type FirstContact struct {
	UserID      user.ID
	DisplayName string
}

// HelpRequested - пользователь запросил справку.
type HelpRequested struct {
	UserID user.ID
}

// ClassChangeRequested - пользователь хочет выбрать или сменить класс.
type ClassChangeRequested struct {
	UserID user.ID
}

// ClassChosen - пользователь нажал кнопку класса.
type ClassChosen struct {
	UserID user.ID
	Class  user.Class
}

// CheckinRequested - пользователь открывает чек-лист за сегодня.
type CheckinRequested struct {
	UserID user.ID
}

// HabitToggled - пользователь нажал кнопку привычки в чек-листе.
type HabitToggled struct {
	UserID   user.ID
	Day      checkin.Day
	HabitKey string
}

// CheckinDone - пользователь завершил чек-ин.
type CheckinDone struct {
	UserID user.ID
	Day    checkin.Day
}

// MyStatsRequested - личная статистика.
type MyStatsRequested struct {
	UserID user.ID
}

// ClassStatsRequested - статистика класса пользователя.
type ClassStatsRequested struct {
	UserID user.ID
}

// SchoolStatsRequested - статистика всей школы.
type SchoolStatsRequested struct {
	UserID user.ID
}

func (FirstContact) isAction()         {}
func (HelpRequested) isAction()        {}
func (ClassChangeRequested) isAction() {}
func (ClassChosen) isAction()          {}
func (CheckinRequested) isAction()     {}
func (HabitToggled) isAction()         {}
func (CheckinDone) isAction()          {}
func (MyStatsRequested) isAction()     {}
func (ClassStatsRequested) isAction()  {}
func (SchoolStatsRequested) isAction() {}

// Inbound pairs a parsed action with the delivery details needed to respond.
type Inbound struct {
	Action Action

	// ChatID is where the response goes.
	ChatID int64

	// MessageID of the message carrying the inline keyboard, for edits.
	// Zero for plain messages.
	MessageID int64

	// CallbackID to acknowledge, empty for plain messages.
	CallbackID string
}

// ParseUpdate converts a raw Telegram update into an Inbound action.
// Returns false for updates the bot does not react to (stickers, group
// chatter, malformed callbacks).
func ParseUpdate(update *telegram.Update) (Inbound, bool) {
	switch {
	case update.Message != nil:
		return parseMessage(update.Message)
	case update.CallbackQuery != nil:
		return parseCallback(update.CallbackQuery)
	default:
		return Inbound{}, false
	}
}

func parseMessage(msg *telegram.Message) (Inbound, bool) {
	if msg.From == nil || !telegram.IsPrivateChat(msg) {
		return Inbound{}, false
	}

	id := user.ID(msg.From.ID)
	inbound := Inbound{ChatID: msg.Chat.ID}

	if command := telegram.ExtractCommand(msg); command != "" {
		switch command {
		case "start":
			inbound.Action = FirstContact{UserID: id, DisplayName: msg.From.FullName()}
		case "help":
			inbound.Action = HelpRequested{UserID: id}
		case "checkin":
			inbound.Action = CheckinRequested{UserID: id}
		case "stats":
			inbound.Action = MyStatsRequested{UserID: id}
		case "setclass":
			inbound.Action = ClassChangeRequested{UserID: id}
		default:
			return Inbound{}, false
		}
		return inbound, true
	}

	// Reply-menu buttons arrive as plain text.
	switch strings.TrimSpace(msg.Text) {
	case MenuCheckin:
		inbound.Action = CheckinRequested{UserID: id}
	case MenuMyStats:
		inbound.Action = MyStatsRequested{UserID: id}
	case MenuClassStats:
		inbound.Action = ClassStatsRequested{UserID: id}
	case MenuSchool:
		inbound.Action = SchoolStatsRequested{UserID: id}
	default:
		return Inbound{}, false
	}
	return inbound, true
}

func parseCallback(cq *telegram.CallbackQuery) (Inbound, bool) {
	if cq.From == nil {
		return Inbound{}, false
	}

	id := user.ID(cq.From.ID)
	inbound := Inbound{CallbackID: cq.ID}
	if cq.Message != nil {
		inbound.ChatID = cq.Message.Chat.ID
		inbound.MessageID = cq.Message.MessageID
	}

	data := cq.Data
	switch {
	case strings.HasPrefix(data, callbackClassPrefix):
		class := strings.TrimPrefix(data, callbackClassPrefix)
		if class == "" {
			return Inbound{}, false
		}
		inbound.Action = ClassChosen{UserID: id, Class: user.Class(class)}

	case strings.HasPrefix(data, callbackTogglePrefix):
		// toggle:{day}:{habit_key}
		rest := strings.TrimPrefix(data, callbackTogglePrefix)
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 || parts[1] == "" {
			return Inbound{}, false
		}
		day, ok := checkin.ParseDay(parts[0])
		if !ok {
			return Inbound{}, false
		}
		inbound.Action = HabitToggled{UserID: id, Day: day, HabitKey: parts[1]}

	case strings.HasPrefix(data, callbackDonePrefix):
		day, ok := checkin.ParseDay(strings.TrimPrefix(data, callbackDonePrefix))
		if !ok {
			return Inbound{}, false
		}
		inbound.Action = CheckinDone{UserID: id, Day: day}

	default:
		return Inbound{}, false
	}

	return inbound, true
}
