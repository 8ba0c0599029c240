// Package bot содержит главный цикл бота: получение апдейтов,
// классификацию и маршрутизацию событий.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/bot/filters"
	"marilove.ru/question-bot/internal/bot/middleware"
	"marilove.ru/question-bot/internal/config"
	"marilove.ru/question-bot/internal/features/questions"
)

// QuestionHandler: обработчики событий вопросов (questions.Handler).
type QuestionHandler interface {
	HandleStart(ctx context.Context, chatID, userID int64)
	HandleQuestion(ctx context.Context, chatID, userID int64, text string)
	HandleAttachment(ctx context.Context, chatID, userID int64)
	HandleDecision(ctx context.Context, cb questions.Callback)
	HandleReply(ctx context.Context, chatID, adminID int64, media questions.Media)
	HandlePending(ctx context.Context, chatID int64)
	HandleAnswer(ctx context.Context, chatID, adminID int64, args []string)
}

// updatesSource: часть BotAPI, нужная циклу.
type updatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot: главная структура бота.
type Bot struct {
	api     updatesSource
	cfg     *config.Config
	roles   *filters.RoleFilter
	handler QuestionHandler

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
	// события одного собеседника обрабатываются по порядку
	serial *serializer
	// запущенные обработчики; Start ждёт их перед выходом
	wg sync.WaitGroup
}

// New создаёт бота.
func New(api updatesSource, cfg *config.Config, roles *filters.RoleFilter, handler QuestionHandler) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:      api,
		cfg:      cfg,
		roles:    roles,
		handler:  handler,
		inflight: make(chan struct{}, maxInFlight),
		serial:   newSerializer(),
	}
}

// Start запускает polling обновлений от Telegram. Блокирует до отмены ctx
// и завершения уже принятых апдейтов.
func (b *Bot) Start(ctx context.Context) {
	defer b.wait()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}
			b.enqueue(ctx, update)
		}
	}
}

// enqueue занимает слот параллелизма и ставит апдейт в очередь отправителя.
func (b *Bot) enqueue(ctx context.Context, update tgbotapi.Update) {
	ev := Classify(update)
	middleware.LogUpdate(update, eventName(ev))

	if _, ignored := ev.(Ignored); ignored {
		return
	}

	select {
	case b.inflight <- struct{}{}:
	case <-ctx.Done():
		log.WithField("update_id", update.UpdateID).Warn("Апдейт не обработан: бот останавливается")
		return
	}

	b.wg.Add(1)
	b.serial.Enqueue(ev.SenderID(), func() {
		defer b.wg.Done()
		defer func() { <-b.inflight }()
		defer middleware.RecoverFromPanic(update.UpdateID)
		b.dispatch(ctx, ev)
	})
}

// wait дожидается обработчиков, запущенных через enqueue.
func (b *Bot) wait() {
	log.WithField("inflight", len(b.inflight)).Info("Ожидание завершения обработчиков...")
	b.wg.Wait()
	log.Info("Все обработчики завершены")
}

// dispatch маршрутизирует событие. Порядок веток важен:
// кнопки и команды раньше текста, роль админа раньше роли пользователя.
func (b *Bot) dispatch(ctx context.Context, ev Event) {
	role := b.roles.RoleOf(ev.SenderID())

	switch e := ev.(type) {
	case StartCommand:
		b.handler.HandleStart(ctx, e.ChatID, e.UserID)

	case ButtonPress:
		// права проверяет сервис: чужое нажатие получит отказ во всплывашке
		b.handler.HandleDecision(ctx, e.Callback)

	case Command:
		if role != filters.RoleAdmin {
			// у пользователей любой текст, включая "/что-то", считается вопросом
			b.handler.HandleQuestion(ctx, e.ChatID, e.UserID, e.Text)
			return
		}
		switch e.Name {
		case "pending":
			b.handler.HandlePending(ctx, e.ChatID)
		case "answer":
			b.handler.HandleAnswer(ctx, e.ChatID, e.UserID, e.Args)
		default:
			b.handler.HandleReply(ctx, e.ChatID, e.UserID, questions.Media{Kind: questions.MediaText})
		}

	case MediaMessage:
		if role == filters.RoleAdmin {
			b.handler.HandleReply(ctx, e.ChatID, e.UserID, e.Media)
			return
		}
		b.handler.HandleAttachment(ctx, e.ChatID, e.UserID)

	case TextMessage:
		if role == filters.RoleAdmin {
			b.handler.HandleReply(ctx, e.ChatID, e.UserID, questions.Media{Kind: questions.MediaText})
			return
		}
		b.handler.HandleQuestion(ctx, e.ChatID, e.UserID, e.Text)

	default:
		log.WithField("event", eventName(ev)).Debug("Событие без обработчика")
	}
}

func eventName(ev Event) string {
	switch ev.(type) {
	case StartCommand:
		return "start"
	case Command:
		return "command"
	case ButtonPress:
		return "button"
	case TextMessage:
		return "text"
	case MediaMessage:
		return "media"
	case Ignored:
		return "ignored"
	}
	return "unknown"
}
