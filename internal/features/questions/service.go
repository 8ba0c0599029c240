// Package questions: service.go содержит state-машину вопроса:
// приём → решение модератора → привязка кружочка → публикация в канал.
//
// Сервис не кэширует вопросы: каждое решение читает и пишет через Store,
// смена статуса делается одним условным UPDATE, поэтому параллельные админы
// не могут перевести вопрос дважды.
package questions

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/common"
	"marilove.ru/question-bot/internal/config"
)

// Store: долговременное хранилище вопросов.
type Store interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	Decide(ctx context.Context, id string, status Status, adminID int64, at time.Time) (bool, error)
	AttachMedia(ctx context.Context, id, mediaRef string) (bool, error)
	MarkPublished(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f Filter) ([]*Question, error)
	DeleteRejectedBefore(ctx context.Context, before time.Time) (int64, error)
	AddNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, questionID string) ([]Notification, error)
}

// SessionTracker хранит, ответ на какой вопрос ждём от каждого админа.
// Не больше одного вопроса на админа: новый Arm перезаписывает старый.
type SessionTracker interface {
	// Arm возвращает вопрос, который ждали до перезаписи ("" если не ждали).
	Arm(ctx context.Context, adminID int64, questionID string) (string, error)
	Current(ctx context.Context, adminID int64) (string, bool, error)
	// Disarm сбрасывает сессию, только если она всё ещё ждёт questionID.
	Disarm(ctx context.Context, adminID int64, questionID string) (bool, error)
}

// Transport: исходящие сообщения в Telegram.
type Transport interface {
	SendText(ctx context.Context, to Recipient, text string, mode ParseMode) (MessageRef, error)
	SendWithControls(ctx context.Context, to Recipient, text string, mode ParseMode, controls []Control) (MessageRef, error)
	RemoveControls(ctx context.Context, ref MessageRef) error
	SendVideoNote(ctx context.Context, to Recipient, fileID string) (MessageRef, error)
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Service управляет жизненным циклом вопросов.
type Service struct {
	store     Store
	sessions  SessionTracker
	transport Transport
	cfg       *config.Config
	now       func() time.Time
}

// NewService создаёт сервис вопросов.
func NewService(store Store, sessions SessionTracker, transport Transport, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		sessions:  sessions,
		transport: transport,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Channel: адресат публикаций.
func (s *Service) Channel() Recipient {
	return Recipient{ChatID: s.cfg.ChannelChatID, Username: s.cfg.ChannelUsername}
}

// Submit принимает вопрос от пользователя и рассылает его админам.
// Ошибка рассылки не откатывает сохранённый вопрос.
func (s *Service) Submit(ctx context.Context, requesterID int64, text string) (string, error) {
	if s.cfg.IsAdmin(requesterID) {
		return "", common.ErrAdminSubmission
	}
	if err := Validate(text, s.cfg.MaxQuestionLength); err != nil {
		return "", err
	}

	q := &Question{
		ID:        NewID(),
		Text:      text,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.store.Create(ctx, q); err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"question_id": q.ID,
		"user_id":     requesterID,
	}).Info("Новый вопрос")

	s.notifyAdmins(ctx, q)
	return q.ID, nil
}

// notifyAdmins отправляет вопрос с кнопками каждому админу (best-effort).
func (s *Service) notifyAdmins(ctx context.Context, q *Question) {
	text := adminNotificationText(q)
	markdownFits := utf8.RuneCountInString(text) <= telegramTextLimit
	controls := DecisionControls(q.ID)

	for _, adminID := range s.cfg.AdminIDs {
		logger := log.WithFields(log.Fields{
			"question_id": q.ID,
			"admin_id":    adminID,
		})

		var (
			ref MessageRef
			err error
		)
		if markdownFits {
			ref, err = s.transport.SendWithControls(ctx, ToChat(adminID), text, MarkdownV2, controls)
		}
		if !markdownFits || err != nil {
			// Разметку мог сломать текст вопроса (например, обратный слеш)
			// или экранирование вывело его за лимит Telegram.
			if err != nil {
				logger.WithError(err).Warn("Уведомление в MarkdownV2 не отправлено, повтор без разметки")
			}
			ref, err = s.transport.SendWithControls(ctx, ToChat(adminID), plainNotificationText(q), PlainText, controls)
		}
		if err != nil {
			logger.WithError(err).Error("Ошибка при отправке вопроса администратору")
			continue
		}
		if err := s.store.AddNotification(ctx, Notification{QuestionID: q.ID, MessageRef: ref}); err != nil {
			logger.WithError(err).Warn("Не удалось сохранить ссылку на уведомление")
		}
		logger.Debug("Вопрос отправлен администратору")
	}
}

// Decide применяет решение модератора.
// Повтор того же решения тем же админом: не ошибка.
// Любое другое решение по уже решённому вопросу: common.ErrInvalidTransition.
func (s *Service) Decide(ctx context.Context, adminID int64, questionID string, decision Decision) error {
	if !s.cfg.IsAdmin(adminID) {
		return common.ErrNotAdmin
	}

	logger := log.WithFields(log.Fields{
		"question_id": questionID,
		"admin_id":    adminID,
		"decision":    decision,
	})

	target := decision.Status()
	applied, err := s.store.Decide(ctx, questionID, target, adminID, s.now())
	if err != nil {
		return err
	}
	if !applied {
		current, err := s.store.GetByID(ctx, questionID)
		if err != nil {
			return err
		}
		if current.Status == target && current.DecidedBy != nil && *current.DecidedBy == adminID {
			logger.Debug("Повторное решение, пропускаем")
			return nil
		}
		logger.WithField("status", current.Status).Info("Решение отклонено: вопрос уже решён")
		return fmt.Errorf("id=%s статус %s: %w", questionID, current.Status, common.ErrInvalidTransition)
	}

	s.removeControls(ctx, questionID)

	if decision == DecisionReject {
		logger.Info("Администратор отклонил вопрос")
		if _, err := s.transport.SendText(ctx, ToChat(adminID), msgRejected, PlainText); err != nil {
			return fmt.Errorf("%w: %v", common.ErrTransport, err)
		}
		return nil
	}

	logger.Info("Администратор принял вопрос")
	return s.armAndPrompt(ctx, adminID, questionID)
}

// armAndPrompt включает ожидание кружочка и просит админа его прислать.
func (s *Service) armAndPrompt(ctx context.Context, adminID int64, questionID string) error {
	prev, err := s.sessions.Arm(ctx, adminID, questionID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения сессии: %w", err)
	}
	if prev != "" && prev != questionID {
		log.WithFields(log.Fields{
			"admin_id":     adminID,
			"question_id":  questionID,
			"replaced_qid": prev,
		}).Warn("Ожидание ответа перезаписано новым вопросом")
	}

	if _, err := s.transport.SendText(ctx, ToChat(adminID), msgSendVideoNote, MarkdownV2); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return nil
}

// removeControls убирает кнопки со всех копий уведомления.
// Гонку решений это только сужает: корректность держит условный UPDATE.
func (s *Service) removeControls(ctx context.Context, questionID string) {
	notifications, err := s.store.ListNotifications(ctx, questionID)
	if err != nil {
		log.WithError(err).WithField("question_id", questionID).Warn("Не удалось получить уведомления")
		return
	}
	for _, n := range notifications {
		if err := s.transport.RemoveControls(ctx, n.MessageRef); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"question_id": questionID,
				"chat_id":     n.ChatID,
				"message_id":  n.MessageID,
			}).Debug("Не удалось убрать кнопки")
		}
	}
}

// AttachReply привязывает кружочек админа к ожидаемому вопросу и публикует его.
func (s *Service) AttachReply(ctx context.Context, adminID int64, media Media) error {
	if !s.cfg.IsAdmin(adminID) {
		return common.ErrNotAdmin
	}

	questionID, armed, err := s.sessions.Current(ctx, adminID)
	if err != nil {
		return fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	if !armed {
		return common.ErrNoPendingQuestion
	}

	logger := log.WithFields(log.Fields{
		"question_id": questionID,
		"admin_id":    adminID,
	})

	if media.Kind != MediaVideoNote || media.FileID == "" {
		logger.WithField("kind", media.Kind).Debug("Неверный тип ответа")
		if s.cfg.DisarmOnWrongContent {
			s.disarm(ctx, adminID, questionID)
		}
		if _, err := s.transport.SendText(ctx, ToChat(adminID), msgWrongContent, PlainText); err != nil {
			logger.WithError(err).Warn("Не удалось отправить повторную подсказку")
		}
		return common.ErrWrongContentType
	}

	// Дальше сессия сбрасывается в любом случае: повтор только через /answer.
	defer s.disarm(ctx, adminID, questionID)

	q, err := s.store.GetByID(ctx, questionID)
	if err != nil {
		return err
	}

	attached, err := s.store.AttachMedia(ctx, questionID, media.FileID)
	if err != nil {
		return err
	}
	if !attached {
		return fmt.Errorf("id=%s: %w", questionID, common.ErrAlreadyAnswered)
	}

	if err := s.publish(ctx, q.Text, media.FileID); err != nil {
		logger.WithError(err).Error("Ошибка при публикации в канале")
		return err
	}

	if err := s.store.MarkPublished(ctx, questionID, s.now()); err != nil {
		logger.WithError(err).Warn("Не удалось отметить публикацию")
	}
	logger.Info("Вопрос опубликован в канале")

	if _, err := s.transport.SendText(ctx, ToChat(adminID), msgPublished, MarkdownV2); err != nil {
		logger.WithError(err).Warn("Не удалось уведомить администратора о публикации")
	}
	return nil
}

// publish отправляет в канал кружочек и следом текст вопроса с подписью.
// Две отправки не транзакционны: при сбое второй кружочек остаётся без текста.
func (s *Service) publish(ctx context.Context, questionText, fileID string) error {
	channel := s.Channel()
	if _, err := s.transport.SendVideoNote(ctx, channel, fileID); err != nil {
		return fmt.Errorf("%w: кружочек: %v", common.ErrTransport, err)
	}
	if _, err := s.transport.SendText(ctx, channel, ChannelPostText(questionText), PlainText); err != nil {
		return fmt.Errorf("%w (%w): %v", common.ErrPartialPublish, common.ErrTransport, err)
	}
	return nil
}

func (s *Service) disarm(ctx context.Context, adminID int64, questionID string) {
	if _, err := s.sessions.Disarm(ctx, adminID, questionID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"admin_id":    adminID,
			"question_id": questionID,
		}).Error("Не удалось сбросить сессию")
	}
}

// Rearm снова включает ожидание кружочка для принятого вопроса без ответа.
// Так админ (любой из списка) возвращается к вопросу после рестарта бота.
func (s *Service) Rearm(ctx context.Context, adminID int64, questionID string) error {
	if !s.cfg.IsAdmin(adminID) {
		return common.ErrNotAdmin
	}

	q, err := s.store.GetByID(ctx, questionID)
	if err != nil {
		return err
	}
	if q.Status != StatusApproved {
		return fmt.Errorf("id=%s статус %s: %w", questionID, q.Status, common.ErrInvalidTransition)
	}
	if q.HasMedia() {
		return fmt.Errorf("id=%s: %w", questionID, common.ErrAlreadyAnswered)
	}

	log.WithFields(log.Fields{
		"question_id": questionID,
		"admin_id":    adminID,
	}).Info("Администратор вернулся к вопросу")
	return s.armAndPrompt(ctx, adminID, questionID)
}

// ListOpen возвращает вопросы, требующие действия: ожидающие решения
// и принятые без ответа. Старые первыми.
func (s *Service) ListOpen(ctx context.Context) ([]*Question, error) {
	pending, err := s.store.List(ctx, Filter{Status: StatusPending})
	if err != nil {
		return nil, err
	}
	approved, err := s.store.List(ctx, Filter{Status: StatusApproved, WithoutMedia: true})
	if err != nil {
		return nil, err
	}

	out := append(pending, approved...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
