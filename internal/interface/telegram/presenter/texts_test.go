package presenter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

func textCatalog() *habit.Catalog {
	return habit.NewCatalog([]habit.Habit{
		{Key: "lights_off", Title: "💡 Выключаю свет"},
		{Key: "water_teeth", Title: "🚰 Выключаю воду"},
	})
}

func TestStartGreeting(t *testing.T) {
	assert.Contains(t, StartGreeting("Маша"), "Маша")
	assert.Contains(t, StartGreeting(""), "друг")
	assert.Contains(t, StartGreeting("  "), "друг")
}

func TestStartGreeting_EscapesHTML(t *testing.T) {
	text := StartGreeting("<script>")

	assert.NotContains(t, text, "<script>")
	assert.Contains(t, text, "&lt;script&gt;")
}

func TestClassConfirmed_EscapesHTML(t *testing.T) {
	text := ClassConfirmed("6В & Co")

	assert.Contains(t, text, "6В &amp; Co")
}

func TestCheckinDone(t *testing.T) {
	assert.Contains(t, CheckinDone(0), "без отметок")
	assert.Contains(t, CheckinDone(1), "1 привычка")
	assert.Contains(t, CheckinDone(4), "привычек: 4")
}

func TestToggleAck(t *testing.T) {
	assert.Equal(t, "Отмечено: 💡 Выключаю свет", ToggleAck("💡 Выключаю свет", true))
	assert.Equal(t, "Снято: 💡 Выключаю свет", ToggleAck("💡 Выключаю свет", false))
}

func TestMyStats_NoData(t *testing.T) {
	text := MyStats(&query.MyStatsResult{}, textCatalog())

	assert.Contains(t, text, NoDataPlaceholder)
	assert.NotContains(t, text, "Топ привычек")
}

func TestMyStats_WithTop(t *testing.T) {
	result := &query.MyStatsResult{
		TotalMarks: 12,
		ActiveDays: 5,
		TopHabits: []checkin.HabitCount{
			{Key: "lights_off", Count: 7},
			{Key: "water_teeth", Count: 5},
		},
	}

	text := MyStats(result, textCatalog())

	assert.Contains(t, text, "Всего отметок: 12")
	assert.Contains(t, text, "Активных дней: 5")
	assert.Contains(t, text, "1. 💡 Выключаю свет — 7")
	assert.Contains(t, text, "2. 🚰 Выключаю воду — 5")
}

func TestMyStats_UnknownHabitFallsBackToKey(t *testing.T) {
	result := &query.MyStatsResult{
		TotalMarks: 1,
		TopHabits:  []checkin.HabitCount{{Key: "retired_habit", Count: 1}},
	}

	text := MyStats(result, textCatalog())

	assert.Contains(t, text, "retired_habit")
}

func TestClassStats(t *testing.T) {
	result := &query.ClassStatsResult{
		Class:      user.Class("6В"),
		Members:    14,
		TotalMarks: 50,
		ActiveDays: 9,
	}

	text := ClassStats(result, textCatalog())

	assert.Contains(t, text, "Класс 6В")
	assert.Contains(t, text, "Участников: 14")

	empty := ClassStats(&query.ClassStatsResult{Class: user.Class("6В")}, textCatalog())
	assert.Contains(t, empty, NoDataPlaceholder)
}

func TestSchoolStats_MostActiveClass(t *testing.T) {
	result := &query.SchoolStatsResult{
		Members:         40,
		TotalMarks:      200,
		ActiveDays:      20,
		MostActiveClass: user.Class("6Г"),
		MostActiveCount: 80,
	}

	text := SchoolStats(result, textCatalog())

	assert.Contains(t, text, "Самый активный класс за неделю")
	assert.Contains(t, text, "6Г")
	assert.Contains(t, text, "80")
}

func TestSchoolStats_NoMostActiveLine(t *testing.T) {
	result := &query.SchoolStatsResult{
		Members:    40,
		TotalMarks: 3,
		ActiveDays: 1,
	}

	text := SchoolStats(result, textCatalog())

	assert.NotContains(t, text, "Самый активный класс")
}

func TestSchoolStats_NoData(t *testing.T) {
	text := SchoolStats(&query.SchoolStatsResult{Members: 40}, textCatalog())

	assert.Contains(t, text, NoDataPlaceholder)
}

func TestCheckinHeader_RussianDate(t *testing.T) {
	text := CheckinHeader(checkin.Day("2024-05-01"), time.UTC)

	assert.Contains(t, text, "01.05.2024")
}

func TestHelp_ListsCommands(t *testing.T) {
	text := Help()

	for _, cmd := range []string{"/checkin", "/stats", "/setclass", "/help"} {
		assert.Contains(t, text, cmd)
	}
}

func TestCheckinKeyboard(t *testing.T) {
	items := []query.CheckinSheetItem{
		{Habit: habit.Habit{Key: "lights_off", Title: "💡 Выключаю свет"}, Marked: true},
		{Habit: habit.Habit{Key: "water_teeth", Title: "🚰 Выключаю воду"}, Marked: false},
	}

	kb := CheckinKeyboard(checkin.Day("2024-05-01"), items)

	require.Len(t, kb.InlineKeyboard, 3, "one row per habit plus done")

	first := kb.InlineKeyboard[0][0]
	assert.True(t, strings.HasPrefix(first.Text, "✅"))
	assert.Equal(t, "toggle:2024-05-01:lights_off", first.CallbackData)

	second := kb.InlineKeyboard[1][0]
	assert.True(t, strings.HasPrefix(second.Text, "☐"))

	done := kb.InlineKeyboard[2][0]
	assert.Equal(t, "done:2024-05-01", done.CallbackData)
}

func TestClassKeyboard(t *testing.T) {
	kb := ClassKeyboard([]string{"6В", "6Г"})

	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "6В", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "class:6В", kb.InlineKeyboard[0][0].CallbackData)
}

func TestMainMenu(t *testing.T) {
	menu := MainMenu("✅ Чек-ин", "📊 Моя статистика", "👥 Класс", "🏫 Школа")

	require.Len(t, menu.Keyboard, 3)
	assert.True(t, menu.ResizeKeyboard)
	assert.Equal(t, "✅ Чек-ин", menu.Keyboard[0][0].Text)
}
