package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/features/questions"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	return tgbotapi.Message{MessageID: len(f.sent), Chat: &tgbotapi.Chat{ID: 42}}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	if f.err != nil {
		return nil, f.err
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSendWithControls(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)

	ref, err := s.SendWithControls(context.Background(), questions.ToChat(42), "*hi*",
		questions.MarkdownV2, questions.DecisionControls("q1"))
	require.NoError(t, err)
	assert.Equal(t, questions.MessageRef{ChatID: 42, MessageID: 1}, ref)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)

	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "approve_q1", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "reject_q1", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestSendToChannelByUsername(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)
	channel := questions.Recipient{Username: "@marilove_channel"}

	_, err := s.SendVideoNote(context.Background(), channel, "file-1")
	require.NoError(t, err)
	_, err = s.SendText(context.Background(), channel, "text", questions.PlainText)
	require.NoError(t, err)

	note, ok := api.sent[0].(tgbotapi.VideoNoteConfig)
	require.True(t, ok)
	assert.Equal(t, "@marilove_channel", note.ChannelUsername)
	assert.Equal(t, tgbotapi.FileID("file-1"), note.File)

	msg, ok := api.sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "@marilove_channel", msg.ChannelUsername)
	assert.Empty(t, msg.ParseMode)
}

func TestRemoveControlsSendsEmptyKeyboard(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)

	require.NoError(t, s.RemoveControls(context.Background(), questions.MessageRef{ChatID: 5, MessageID: 9}))

	require.Len(t, api.requested, 1)
	edit, ok := api.requested[0].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	assert.Equal(t, int64(5), edit.ChatID)
	assert.Equal(t, 9, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)
	assert.Empty(t, edit.ReplyMarkup.InlineKeyboard)
}

func TestAnswerCallbackAlert(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)

	require.NoError(t, s.AnswerCallback(context.Background(), "cb1", "done", true))

	cb, ok := api.requested[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb1", cb.CallbackQueryID)
	assert.True(t, cb.ShowAlert)
}

func TestSendErrorIsTransportError(t *testing.T) {
	api := &fakeAPI{err: errors.New("Bad Request: chat not found")}
	s := NewSender(api)

	_, err := s.SendText(context.Background(), questions.ToChat(1), "x", questions.PlainText)
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestCancelledContextSkipsSend(t *testing.T) {
	api := &fakeAPI{}
	s := NewSender(api)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SendText(ctx, questions.ToChat(1), "x", questions.PlainText)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.sent)
}
