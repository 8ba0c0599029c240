// Package bot: events.go превращает апдейт Telegram в одно событие
// из закрытого набора. Маршрутизация по событиям: в Bot.dispatch.
package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marilove.ru/question-bot/internal/features/questions"
)

// Event: входящее событие. Реализации перечислены ниже.
type Event interface {
	// SenderID: кто инициировал событие (0 для Ignored).
	SenderID() int64
}

// StartCommand: /start.
type StartCommand struct {
	ChatID int64
	UserID int64
}

// Command: любая другая команда в личке.
type Command struct {
	ChatID int64
	UserID int64
	Name   string
	Args   []string
	Text   string // исходный текст целиком
}

// ButtonPress: нажатие inline-кнопки.
type ButtonPress struct {
	questions.Callback
}

// TextMessage: обычный текст в личке.
type TextMessage struct {
	ChatID int64
	UserID int64
	Text   string
}

// MediaMessage: любое вложение в личке.
type MediaMessage struct {
	ChatID int64
	UserID int64
	Media  questions.Media
}

// Ignored: апдейт, на который бот не реагирует.
type Ignored struct {
	Reason string
}

func (e StartCommand) SenderID() int64 { return e.UserID }
func (e Command) SenderID() int64      { return e.UserID }
func (e ButtonPress) SenderID() int64  { return e.AdminID }
func (e TextMessage) SenderID() int64  { return e.UserID }
func (e MediaMessage) SenderID() int64 { return e.UserID }
func (e Ignored) SenderID() int64      { return 0 }

// Classify разбирает апдейт. Бот работает только в личных сообщениях.
func Classify(update tgbotapi.Update) Event {
	if cq := update.CallbackQuery; cq != nil {
		if cq.From == nil {
			return Ignored{Reason: "callback without sender"}
		}
		cb := questions.Callback{
			ID:      cq.ID,
			AdminID: cq.From.ID,
			Data:    cq.Data,
		}
		if cq.Message != nil {
			cb.MessageID = cq.Message.MessageID
			if cq.Message.Chat != nil {
				cb.ChatID = cq.Message.Chat.ID
			}
		}
		return ButtonPress{Callback: cb}
	}

	m := update.Message
	if m == nil {
		return Ignored{Reason: "no message"}
	}
	if m.From == nil || m.Chat == nil {
		return Ignored{Reason: "message without sender"}
	}
	if !m.Chat.IsPrivate() {
		return Ignored{Reason: "not a private chat"}
	}

	chatID, userID := m.Chat.ID, m.From.ID

	if m.IsCommand() {
		name := strings.ToLower(m.Command())
		if name == "start" {
			return StartCommand{ChatID: chatID, UserID: userID}
		}
		return Command{
			ChatID: chatID,
			UserID: userID,
			Name:   name,
			Args:   strings.Fields(m.CommandArguments()),
			Text:   m.Text,
		}
	}

	if kind, fileID, ok := mediaOf(m); ok {
		return MediaMessage{
			ChatID: chatID,
			UserID: userID,
			Media:  questions.Media{Kind: kind, FileID: fileID},
		}
	}

	if m.Text != "" {
		return TextMessage{ChatID: chatID, UserID: userID, Text: m.Text}
	}

	// контакт, геолокация, опрос и прочее: считаем неподдерживаемым вложением
	return MediaMessage{ChatID: chatID, UserID: userID, Media: questions.Media{Kind: questions.MediaOther}}
}

// mediaOf определяет тип вложения. Animation проверяется раньше Document:
// Telegram заполняет у гифок оба поля.
func mediaOf(m *tgbotapi.Message) (questions.MediaKind, string, bool) {
	switch {
	case m.VideoNote != nil:
		return questions.MediaVideoNote, m.VideoNote.FileID, true
	case len(m.Photo) > 0:
		return questions.MediaPhoto, m.Photo[len(m.Photo)-1].FileID, true
	case m.Video != nil:
		return questions.MediaVideo, m.Video.FileID, true
	case m.Animation != nil:
		return questions.MediaAnimation, m.Animation.FileID, true
	case m.Document != nil:
		return questions.MediaDocument, m.Document.FileID, true
	case m.Audio != nil:
		return questions.MediaAudio, m.Audio.FileID, true
	case m.Voice != nil:
		return questions.MediaVoice, m.Voice.FileID, true
	case m.Sticker != nil:
		return questions.MediaSticker, m.Sticker.FileID, true
	}
	return "", "", false
}
