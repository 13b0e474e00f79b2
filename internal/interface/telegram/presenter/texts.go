package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecohabit-hub/ecohabit-bot/internal/application/query"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/habit"
	"github.com/ecohabit-hub/ecohabit-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEXTS
// Все тексты бота. HTML-разметка, поэтому пользовательский ввод сюда
// не подставляется без экранирования.
// ══════════════════════════════════════════════════════════════════════════════

// NoDataPlaceholder показывается вместо статистики, когда отметок ещё нет.
const NoDataPlaceholder = "Пока нет данных. Начни с первого чек-ина! 🌱"

// StartGreeting - приветствие по /start.
func StartGreeting(displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "друг"
	}
	return fmt.Sprintf(
		"Привет, %s! 🌍\n\n"+
			"Я ЭкоБот. Каждый вечер я помогаю отмечать экопривычки:\n"+
			"выключенный свет, своя бутылка, мусор в урну и другие.\n\n"+
			"Отмечай привычки, смотри свою статистику и соревнуйся классом!",
		escapeHTML(name),
	)
}

// ClassPrompt - предложение выбрать класс.
func ClassPrompt() string {
	return "Выбери свой класс:"
}

// ClassConfirmed - подтверждение выбора класса.
func ClassConfirmed(class string) string {
	return fmt.Sprintf("Отлично! Ты в классе <b>%s</b> ✅\n\nТеперь жми «%s» и отмечай привычки.", escapeHTML(class), MenuHintCheckin)
}

// MenuHintCheckin duplicates the check-in menu label for texts that mention it.
const MenuHintCheckin = "✅ Чек-ин"

// InvalidClass - класс не из каталога.
func InvalidClass() string {
	return "Такого класса нет 🤔 Выбери класс кнопкой ниже."
}

// NoClass - действие требует выбранного класса.
func NoClass() string {
	return "Сначала выбери класс — без него я не знаю, за кого ты играешь 😉"
}

// CheckinHeader - заголовок чек-листа за день.
func CheckinHeader(day checkin.Day, loc *time.Location) string {
	date := day.String()
	if t, err := timeutil.ParseDate(date, loc); err == nil {
		date = timeutil.FormatRussian(t)
	}
	return fmt.Sprintf("🌱 Чек-ин за <b>%s</b>\n\nОтметь, что получилось сегодня:", date)
}

// ToggleAck - короткий ответ на переключение привычки (alert в callback).
func ToggleAck(title string, marked bool) string {
	if marked {
		return "Отмечено: " + title
	}
	return "Снято: " + title
}

// CheckinDone - итог завершённого чек-ина.
func CheckinDone(count int) string {
	switch {
	case count == 0:
		return "📌 Готово! Сегодня без отметок — завтра получится 💪"
	case count == 1:
		return "📌 Готово! Сегодня отмечена 1 привычка 🌿"
	default:
		return fmt.Sprintf("📌 Готово! Сегодня отмечено привычек: %d 🌿", count)
	}
}

// MyStats - личная статистика.
func MyStats(result *query.MyStatsResult, catalog *habit.Catalog) string {
	if result.TotalMarks == 0 {
		return "📊 <b>Моя статистика</b>\n\n" + NoDataPlaceholder
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>Моя статистика</b>\n\n")
	sb.WriteString(fmt.Sprintf("• Всего отметок: %d\n", result.TotalMarks))
	sb.WriteString(fmt.Sprintf("• Активных дней: %d\n", result.ActiveDays))
	writeTopHabits(&sb, result.TopHabits, catalog)
	return sb.String()
}

// ClassStats - статистика класса.
func ClassStats(result *query.ClassStatsResult, catalog *habit.Catalog) string {
	header := fmt.Sprintf("👥 <b>Класс %s</b>\n\n", escapeHTML(result.Class.String()))
	if result.TotalMarks == 0 {
		return header + NoDataPlaceholder
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(fmt.Sprintf("• Участников: %d\n", result.Members))
	sb.WriteString(fmt.Sprintf("• Всего отметок: %d\n", result.TotalMarks))
	sb.WriteString(fmt.Sprintf("• Активных дней: %d\n", result.ActiveDays))
	writeTopHabits(&sb, result.TopHabits, catalog)
	return sb.String()
}

// SchoolStats - статистика всей школы.
func SchoolStats(result *query.SchoolStatsResult, catalog *habit.Catalog) string {
	if result.TotalMarks == 0 {
		return "🏫 <b>Вся школа</b>\n\n" + NoDataPlaceholder
	}

	var sb strings.Builder
	sb.WriteString("🏫 <b>Вся школа</b>\n\n")
	sb.WriteString(fmt.Sprintf("• Участников: %d\n", result.Members))
	sb.WriteString(fmt.Sprintf("• Всего отметок: %d\n", result.TotalMarks))
	sb.WriteString(fmt.Sprintf("• Активных дней: %d\n", result.ActiveDays))
	writeTopHabits(&sb, result.TopHabits, catalog)

	if result.MostActiveClass.IsSet() {
		sb.WriteString(fmt.Sprintf(
			"\n🔥 Самый активный класс за неделю: <b>%s</b> (%d отметок)",
			escapeHTML(result.MostActiveClass.String()), result.MostActiveCount,
		))
	}

	return sb.String()
}

// Help - справка по командам.
func Help() string {
	return "🌍 <b>ЭкоБот</b>\n\n" +
		"Каждый вечер отмечай свои экопривычки и следи за прогрессом.\n\n" +
		"Команды:\n" +
		"• /checkin — чек-лист за сегодня\n" +
		"• /stats — моя статистика\n" +
		"• /setclass — выбрать или сменить класс\n" +
		"• /help — эта справка\n\n" +
		"Кнопки меню внизу делают то же самое."
}

// ReminderCheckin - вечернее напоминание с чек-листом.
func ReminderCheckin(day checkin.Day, loc *time.Location) string {
	date := day.String()
	if t, err := timeutil.ParseDate(date, loc); err == nil {
		date = timeutil.FormatRussian(t)
	}
	return fmt.Sprintf("🌙 Вечерний чек-ин за <b>%s</b>!\n\nОтметь, что получилось сегодня:", date)
}

// ReminderClass - вечернее напоминание для тех, кто ещё без класса.
func ReminderClass() string {
	return "🌙 Привет! Чтобы участвовать в эко-челлендже, выбери свой класс:"
}

// GenericError - ответ на внутреннюю ошибку.
func GenericError() string {
	return "😔 Что-то пошло не так. Попробуй ещё раз через минуту."
}

// writeTopHabits appends the top-habit list, omitting it entirely when empty.
func writeTopHabits(sb *strings.Builder, top []checkin.HabitCount, catalog *habit.Catalog) {
	if len(top) == 0 {
		return
	}

	sb.WriteString("\nТоп привычек:\n")
	for i, hc := range top {
		title, ok := catalog.Title(hc.Key)
		if !ok {
			title = hc.Key
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %d\n", i+1, title, hc.Count))
	}
}

// escapeHTML escapes the characters Telegram's HTML parse mode treats specially.
func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
