package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/command"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
	tgapi "github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
)

func privateMessage(text string) *tgapi.Update {
	msg := &tgapi.Message{
		MessageID: 10,
		From:      &tgapi.User{ID: 42, FirstName: "Маша"},
		Chat:      &tgapi.Chat{ID: 42, Type: "private"},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, c := range text {
			if c == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return &tgapi.Update{Message: msg}
}

func callback(data string) *tgapi.Update {
	return &tgapi.Update{
		CallbackQuery: &tgapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgapi.User{ID: 42, FirstName: "Маша"},
			Message: &tgapi.Message{
				MessageID: 15,
				Chat:      &tgapi.Chat{ID: 42, Type: "private"},
			},
			Data: data,
		},
	}
}

func TestParseUpdate_Commands(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{"/start", FirstContact{UserID: 42, DisplayName: "Маша"}},
		{"/help", HelpRequested{UserID: 42}},
		{"/checkin", CheckinRequested{UserID: 42}},
		{"/stats", MyStatsRequested{UserID: 42}},
		{"/setclass", ClassChangeRequested{UserID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			inbound, ok := ParseUpdate(privateMessage(tt.text))
			require.True(t, ok)
			assert.Equal(t, tt.want, inbound.Action)
			assert.Equal(t, int64(42), inbound.ChatID)
			assert.Empty(t, inbound.CallbackID)
		})
	}
}

func TestParseUpdate_MenuButtons(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{MenuCheckin, CheckinRequested{UserID: 42}},
		{MenuMyStats, MyStatsRequested{UserID: 42}},
		{MenuClassStats, ClassStatsRequested{UserID: 42}},
		{MenuSchool, SchoolStatsRequested{UserID: 42}},
		{"  " + MenuCheckin + "  ", CheckinRequested{UserID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			inbound, ok := ParseUpdate(privateMessage(tt.text))
			require.True(t, ok)
			assert.Equal(t, tt.want, inbound.Action)
		})
	}
}

func TestParseUpdate_IgnoredMessages(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		_, ok := ParseUpdate(privateMessage("/ban"))
		assert.False(t, ok)
	})

	t.Run("free text", func(t *testing.T) {
		_, ok := ParseUpdate(privateMessage("привет, бот"))
		assert.False(t, ok)
	})

	t.Run("group chat", func(t *testing.T) {
		update := privateMessage("/start")
		update.Message.Chat.Type = "group"
		_, ok := ParseUpdate(update)
		assert.False(t, ok)
	})

	t.Run("no sender", func(t *testing.T) {
		update := privateMessage("/start")
		update.Message.From = nil
		_, ok := ParseUpdate(update)
		assert.False(t, ok)
	})

	t.Run("empty update", func(t *testing.T) {
		_, ok := ParseUpdate(&tgapi.Update{})
		assert.False(t, ok)
	})
}

func TestParseUpdate_Callbacks(t *testing.T) {
	t.Run("class", func(t *testing.T) {
		inbound, ok := ParseUpdate(callback("class:6В"))
		require.True(t, ok)
		assert.Equal(t, ClassChosen{UserID: 42, Class: user.Class("6В")}, inbound.Action)
		assert.Equal(t, "cb-1", inbound.CallbackID)
		assert.Equal(t, int64(15), inbound.MessageID)

		// The parsed class feeds the command layer without re-typing.
		chosen := inbound.Action.(ClassChosen)
		cmd := command.ChooseClassCommand{UserID: chosen.UserID, Class: chosen.Class}
		assert.Equal(t, user.Class("6В"), cmd.Class)
	})

	t.Run("toggle", func(t *testing.T) {
		inbound, ok := ParseUpdate(callback("toggle:2024-05-01:lights_off"))
		require.True(t, ok)
		assert.Equal(t, HabitToggled{
			UserID:   user.ID(42),
			Day:      checkin.Day("2024-05-01"),
			HabitKey: "lights_off",
		}, inbound.Action)
	})

	t.Run("done", func(t *testing.T) {
		inbound, ok := ParseUpdate(callback("done:2024-05-01"))
		require.True(t, ok)
		assert.Equal(t, CheckinDone{UserID: 42, Day: checkin.Day("2024-05-01")}, inbound.Action)
	})
}

func TestParseUpdate_MalformedCallbacks(t *testing.T) {
	tests := []string{
		"class:",
		"toggle:2024-05-01",
		"toggle:2024-05-01:",
		"toggle:not-a-date:lights_off",
		"done:not-a-date",
		"endorse:42",
		"",
	}

	for _, data := range tests {
		t.Run("data="+data, func(t *testing.T) {
			_, ok := ParseUpdate(callback(data))
			assert.False(t, ok)
		})
	}
}

func TestParseUpdate_CallbackWithoutMessage(t *testing.T) {
	update := callback("done:2024-05-01")
	update.CallbackQuery.Message = nil

	inbound, ok := ParseUpdate(update)

	require.True(t, ok)
	assert.Zero(t, inbound.ChatID)
	assert.Zero(t, inbound.MessageID)
	assert.Equal(t, "cb-1", inbound.CallbackID)
}
