// Package presenter formats outgoing Telegram messages and keyboards for
// the EcoHabit bot. Handlers produce domain results, the presenter turns
// them into HTML texts and inline keyboards.
package presenter

import (
	"fmt"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYBOARDS
// ══════════════════════════════════════════════════════════════════════════════

// MainMenu возвращает постоянную reply-клавиатуру с основными действиями.
func MainMenu(menuCheckin, menuMyStats, menuClassStats, menuSchool string) *telegram.ReplyKeyboardMarkup {
	return &telegram.ReplyKeyboardMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: menuCheckin}},
			{{Text: menuMyStats}, {Text: menuClassStats}},
			{{Text: menuSchool}},
		},
		ResizeKeyboard: true,
	}
}

// ClassKeyboard строит клавиатуру выбора класса, одна кнопка на класс.
func ClassKeyboard(classes []string) *telegram.InlineKeyboardMarkup {
	kb := telegram.NewKeyboard()
	for _, class := range classes {
		kb.Row(telegram.Button(class, "class:"+class))
	}
	return kb.Build()
}

// CheckinKeyboard строит чек-лист привычек за день. Отмеченные привычки
// получают галочку, нажатие любой кнопки переключает отметку. Последняя
// кнопка завершает чек-ин.
func CheckinKeyboard(day checkin.Day, items []query.CheckinSheetItem) *telegram.InlineKeyboardMarkup {
	kb := telegram.NewKeyboard()

	for _, item := range items {
		box := "☐"
		if item.Marked {
			box = "✅"
		}
		label := fmt.Sprintf("%s %s", box, item.Habit.Title)
		kb.Row(telegram.Button(label, fmt.Sprintf("toggle:%s:%s", day.String(), item.Habit.Key)))
	}

	kb.Row(telegram.Button("📌 Готово", "done:"+day.String()))
	return kb.Build()
}
