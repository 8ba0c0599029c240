// Package middleware содержит сквозные обработчики апдейтов:
// логирование и восстановление после паники.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/common"
)

// LogUpdate логирует входящий апдейт.
// Текст вопросов анонимный, поэтому в лог идёт только начало.
func LogUpdate(update tgbotapi.Update, kind string) {
	fields := log.Fields{
		"update_id": update.UpdateID,
		"event":     kind,
	}

	switch {
	case update.CallbackQuery != nil:
		if update.CallbackQuery.From != nil {
			fields["user_id"] = update.CallbackQuery.From.ID
		}
		fields["data"] = update.CallbackQuery.Data
	case update.Message != nil:
		m := update.Message
		if m.From != nil {
			fields["user_id"] = m.From.ID
		}
		if m.Chat != nil {
			fields["chat_id"] = m.Chat.ID
			fields["chat_type"] = m.Chat.Type
		}
		if m.Text != "" {
			fields["text"] = common.Truncate(m.Text, 50)
		}
	}

	log.WithFields(fields).Debug("Входящий апдейт")
}
