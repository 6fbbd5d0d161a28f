package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ONEYTY111/active-break-sub000/internal/domain"
)

// UI texts in English
const (
	startText = "👋 I remind you to take fitness breaks.\n\n" +
		"Add a reminder per activity with /add, record a completed break with /done — " +
		"I skip reminders for breaks you already took.\n\n" +
		"Commands: /rules /status /pause /resume /tz"
	statusTitle = "🧾 Your current settings:"
)

// mainMenuKeyboard builds a reply keyboard with a single toggle button:
// if enabled is true -> "/pause", else -> "/resume".
func mainMenuKeyboard(enabled bool) tgbotapi.ReplyKeyboardMarkup {
	toggle := "/pause"
	if !enabled {
		toggle = "/resume"
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/rules"),
			tgbotapi.NewKeyboardButton("/add"),
			tgbotapi.NewKeyboardButton("/done"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton(toggle),
		),
	)
}

// activityKeyboard offers one button per catalog entry; prefix distinguishes
// the add-rule flow from the done flow.
func activityKeyboard(types []domain.ActivityType, prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	row := []tgbotapi.InlineKeyboardButton{}
	for _, at := range types {
		label := fmt.Sprintf("%s %s", at.Emoji, at.Name)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s:%d", prefix, at.ID)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func intervalPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("30m", "addint:30m"),
			tgbotapi.NewInlineKeyboardButtonData("45m", "addint:45m"),
			tgbotapi.NewInlineKeyboardButtonData("1h", "addint:1h"),
			tgbotapi.NewInlineKeyboardButtonData("2h", "addint:2h"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3h", "addint:3h"),
			tgbotapi.NewInlineKeyboardButtonData("4h", "addint:4h"),
			tgbotapi.NewInlineKeyboardButtonData("Custom", "addint:custom"),
		),
	)
}

func dayCadenceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Every day", "adddays:0"),
			tgbotapi.NewInlineKeyboardButtonData("Every 2nd", "adddays:2"),
			tgbotapi.NewInlineKeyboardButtonData("Every 3rd", "adddays:3"),
			tgbotapi.NewInlineKeyboardButtonData("Weekly", "adddays:7"),
		),
	)
}

func windowPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("09:00–18:00", "addwin:09:00-18:00"),
			tgbotapi.NewInlineKeyboardButtonData("08:00–22:00", "addwin:08:00-22:00"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("22:00–06:00 (night shift)", "addwin:22:00-06:00"),
			tgbotapi.NewInlineKeyboardButtonData("Custom", "addwin:custom"),
		),
	)
}

func tzPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("UTC", "tz:UTC"),
			tgbotapi.NewInlineKeyboardButtonData("Berlin", "tz:Europe/Berlin"),
			tgbotapi.NewInlineKeyboardButtonData("Moscow", "tz:Europe/Moscow"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("New York", "tz:America/New_York"),
			tgbotapi.NewInlineKeyboardButtonData("Tokyo", "tz:Asia/Tokyo"),
			tgbotapi.NewInlineKeyboardButtonData("Custom", "tz:custom"),
		),
	)
}

// ruleKeyboard builds one row of management buttons for a rule.
func ruleKeyboard(rule domain.Rule) tgbotapi.InlineKeyboardMarkup {
	toggleLabel, toggleAction := "⏸ Pause", "pause"
	if !rule.Enabled {
		toggleLabel, toggleAction = "▶️ Resume", "resume"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, fmt.Sprintf("rule:%s:%s", rule.ID, toggleAction)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("rule:%s:del", rule.ID)),
		),
	)
}

// describeRule renders one rule as a short human line.
func describeRule(rule domain.Rule, activityName string) string {
	state := "✅"
	if !rule.Enabled {
		state = "⏸"
	}
	cadence := fmt.Sprintf("every %s", rule.Interval())
	if rule.IntervalDays > 1 {
		cadence += fmt.Sprintf(", every %d days", rule.IntervalDays)
	}
	return fmt.Sprintf("%s %s — %s, %s–%s",
		state, activityName, cadence,
		domain.FormatMinutes(rule.WindowStartM), domain.FormatMinutes(rule.WindowEndM))
}
