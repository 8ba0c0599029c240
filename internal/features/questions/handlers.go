// Package questions: handlers.go переводит входящие события Telegram
// в вызовы сервиса и отвечает инициатору.
package questions

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/config"
)

// Callback: нажатие inline-кнопки.
type Callback struct {
	ID        string
	AdminID   int64
	ChatID    int64
	MessageID int
	Data      string
}

// Handler обрабатывает события вопросов.
type Handler struct {
	service   *Service
	transport Transport
	cfg       *config.Config
}

// NewHandler создаёт обработчик вопросов.
func NewHandler(service *Service, transport Transport, cfg *config.Config) *Handler {
	return &Handler{service: service, transport: transport, cfg: cfg}
}

// HandleStart: команда /start.
func (h *Handler) HandleStart(ctx context.Context, chatID, userID int64) {
	h.send(ctx, chatID, msgWelcome, MarkdownV2)
	log.WithField("user_id", userID).Info("Пользователь запустил бота")
}

// HandleQuestion: текстовое сообщение пользователя (вопрос).
func (h *Handler) HandleQuestion(ctx context.Context, chatID, userID int64, text string) {
	_, err := h.service.Submit(ctx, userID, text)

	var ve *ValidationError
	switch {
	case err == nil:
		h.send(ctx, chatID, submittedText(h.cfg.ChannelLink), MarkdownV2)
	case errors.As(err, &ve):
		log.WithField("user_id", userID).Warnf("Невалидный вопрос: %s", ve.Error())
		h.send(ctx, chatID, "❌ "+ve.Error(), PlainText)
	case errors.Is(err, common.ErrAdminSubmission):
		log.WithField("user_id", userID).Debug("Текст от администратора вне режима ответа")
	default:
		log.WithError(err).WithField("user_id", userID).Error("Ошибка при обработке вопроса")
		h.send(ctx, chatID, msgSubmitFailed, PlainText)
	}
}

// HandleAttachment: вложение от пользователя. Принимаем только текст.
func (h *Handler) HandleAttachment(ctx context.Context, chatID, userID int64) {
	log.WithField("user_id", userID).Warn("Пользователь попытался отправить вложение")
	h.send(ctx, chatID, msgTextOnly, PlainText)
}

// HandleDecision: нажатие «Принять» / «Отклонить».
func (h *Handler) HandleDecision(ctx context.Context, cb Callback) {
	decision, questionID, ok := ParseDecisionData(cb.Data)
	if !ok {
		h.answer(ctx, cb.ID, cbUnknown, false)
		return
	}

	err := h.service.Decide(ctx, cb.AdminID, questionID, decision)
	switch {
	case err == nil:
		if decision == DecisionApprove {
			h.answer(ctx, cb.ID, cbApproved, false)
		} else {
			h.answer(ctx, cb.ID, cbRejected, false)
		}
	case errors.Is(err, common.ErrInvalidTransition):
		h.answer(ctx, cb.ID, cbAlreadyDecided, true)
		h.dropControls(ctx, cb)
	case errors.Is(err, common.ErrQuestionNotFound):
		h.answer(ctx, cb.ID, cbNotFound, true)
		h.dropControls(ctx, cb)
	case errors.Is(err, common.ErrNotAdmin):
		h.answer(ctx, cb.ID, cbNotAdmin, true)
	case errors.Is(err, common.ErrTransport):
		log.WithError(err).WithField("question_id", questionID).Warn("Решение сохранено, уведомление не отправлено")
		h.answer(ctx, cb.ID, cbNotifyFailed, true)
	default:
		log.WithError(err).WithField("question_id", questionID).Error("Ошибка при обработке решения")
		h.answer(ctx, cb.ID, cbFailed, true)
	}
}

// HandleReply: сообщение админа, которое может быть ответом на вопрос.
func (h *Handler) HandleReply(ctx context.Context, chatID, adminID int64, media Media) {
	err := h.service.AttachReply(ctx, adminID, media)
	if err == nil {
		return
	}

	logger := log.WithError(err).WithField("admin_id", adminID)
	switch {
	case errors.Is(err, common.ErrWrongContentType):
		// подсказку уже отправил сервис
	case errors.Is(err, common.ErrNoPendingQuestion):
		h.send(ctx, chatID, msgNoPending, PlainText)
	case errors.Is(err, common.ErrQuestionNotFound):
		logger.Warn("Ожидаемый вопрос пропал из базы")
		h.send(ctx, chatID, msgNotFound, PlainText)
	case errors.Is(err, common.ErrAlreadyAnswered):
		h.send(ctx, chatID, msgAlreadyAnswered, PlainText)
	case errors.Is(err, common.ErrPartialPublish):
		h.send(ctx, chatID, msgPartialPublish, PlainText)
	default:
		logger.Error("Ошибка при публикации вопроса")
		h.send(ctx, chatID, msgPublishFailed, PlainText)
	}
}

// HandlePending обрабатывает /pending (открытые вопросы).
func (h *Handler) HandlePending(ctx context.Context, chatID int64) {
	list, err := h.service.ListOpen(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка получения открытых вопросов")
		h.send(ctx, chatID, "❌ "+err.Error(), PlainText)
		return
	}
	for _, text := range openListText(list) {
		h.send(ctx, chatID, text, PlainText)
	}
}

// HandleAnswer обрабатывает /answer <id> (вернуться к принятому вопросу).
func (h *Handler) HandleAnswer(ctx context.Context, chatID, adminID int64, args []string) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		h.send(ctx, chatID, msgAnswerUsage, PlainText)
		return
	}

	err := h.service.Rearm(ctx, adminID, strings.TrimSpace(args[0]))
	switch {
	case err == nil:
	case errors.Is(err, common.ErrQuestionNotFound):
		h.send(ctx, chatID, msgNotFound, PlainText)
	case errors.Is(err, common.ErrInvalidTransition):
		h.send(ctx, chatID, "❌ Вопрос не принят, отвечать на него нельзя", PlainText)
	case errors.Is(err, common.ErrAlreadyAnswered):
		h.send(ctx, chatID, msgAlreadyAnswered, PlainText)
	default:
		log.WithError(err).WithField("admin_id", adminID).Error("Ошибка /answer")
		h.send(ctx, chatID, "❌ "+err.Error(), PlainText)
	}
}

// dropControls убирает кнопки с сообщения, на котором нажали устаревшую кнопку.
func (h *Handler) dropControls(ctx context.Context, cb Callback) {
	if cb.MessageID == 0 {
		return
	}
	if err := h.transport.RemoveControls(ctx, MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID}); err != nil {
		log.WithError(err).Debug("Не удалось убрать кнопки")
	}
}

func (h *Handler) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := h.transport.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		log.WithError(err).Debug("Не удалось ответить на нажатие кнопки")
	}
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, mode ParseMode) {
	if _, err := h.transport.SendText(ctx, ToChat(chatID), text, mode); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
