package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rpregul/aiflowers/pkg/locales"
	"github.com/rpregul/aiflowers/pkg/models"
)

// caption возвращает подпись кнопки для токена действия.
func caption(action models.Action) string {
	l := locales.Get()
	switch action {
	case models.ActionShrink:
		return l.Keyboard.Shrink
	case models.ActionEnlarge:
		return l.Keyboard.Enlarge
	case models.ActionDraw:
		return l.Keyboard.Draw
	case models.ActionOrder:
		return l.Keyboard.Order
	}
	return string(action)
}

// keyboardFor строит inline-клавиатуру по списку доступных действий,
// по две кнопки в ряд. Пустое меню — nil: сообщение уходит без клавиатуры.
func keyboardFor(menu []models.Action) *tgbotapi.InlineKeyboardMarkup {
	if len(menu) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, action := range menu {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(caption(action), string(action)))
		if len(row) == 2 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}
