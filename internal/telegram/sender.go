// Package telegram отправляет сообщения через Telegram Bot API.
// Sender реализует questions.Transport поверх tgbotapi.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/features/questions"
)

// botAPI: часть *tgbotapi.BotAPI, которая нужна отправителю.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender отправляет сообщения, кнопки и кружочки.
type Sender struct {
	api botAPI
}

var _ questions.Transport = (*Sender)(nil)

// NewSender создаёт отправителя.
func NewSender(api botAPI) *Sender {
	return &Sender{api: api}
}

// SendText отправляет текст.
func (s *Sender) SendText(ctx context.Context, to questions.Recipient, text string, mode questions.ParseMode) (questions.MessageRef, error) {
	return s.send(ctx, newMessage(to, text, mode))
}

// SendWithControls отправляет текст с inline-кнопками в один ряд.
func (s *Sender) SendWithControls(ctx context.Context, to questions.Recipient, text string, mode questions.ParseMode, controls []questions.Control) (questions.MessageRef, error) {
	msg := newMessage(to, text, mode)
	msg.ReplyMarkup = inlineKeyboard(controls)
	return s.send(ctx, msg)
}

// RemoveControls убирает inline-кнопки с сообщения.
func (s *Sender) RemoveControls(ctx context.Context, ref questions.MessageRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(ref.ChatID, ref.MessageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := s.api.Request(edit); err != nil {
		return fmt.Errorf("%w: edit markup: %v", common.ErrTransport, err)
	}
	return nil
}

// SendVideoNote пересылает кружочек по file_id.
func (s *Sender) SendVideoNote(ctx context.Context, to questions.Recipient, fileID string) (questions.MessageRef, error) {
	note := tgbotapi.NewVideoNote(to.ChatID, 0, tgbotapi.FileID(fileID))
	if to.ChatID == 0 {
		note.ChannelUsername = to.Username
	}
	return s.send(ctx, note)
}

// AnswerCallback отвечает на нажатие кнопки (всплывающее уведомление).
func (s *Sender) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := s.api.Request(cb); err != nil {
		return fmt.Errorf("%w: callback: %v", common.ErrTransport, err)
	}
	return nil
}

func (s *Sender) send(ctx context.Context, c tgbotapi.Chattable) (questions.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return questions.MessageRef{}, err
	}
	sent, err := s.api.Send(c)
	if err != nil {
		return questions.MessageRef{}, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	ref := questions.MessageRef{MessageID: sent.MessageID}
	if sent.Chat != nil {
		ref.ChatID = sent.Chat.ID
	}
	return ref, nil
}

func newMessage(to questions.Recipient, text string, mode questions.ParseMode) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if to.ChatID == 0 && to.Username != "" {
		msg = tgbotapi.NewMessageToChannel(to.Username, text)
	} else {
		msg = tgbotapi.NewMessage(to.ChatID, text)
	}
	msg.ParseMode = string(mode)
	return msg
}

func inlineKeyboard(controls []questions.Control) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(controls))
	for _, c := range controls {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Text, c.Data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
