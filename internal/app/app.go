// Package app инициализирует все компоненты приложения.
// app.go создаёт БД-пул, хранилище сессий, сервис вопросов,
// обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"marilove.ru/question-bot/internal/bot"
	"marilove.ru/question-bot/internal/bot/filters"
	"marilove.ru/question-bot/internal/config"
	"marilove.ru/question-bot/internal/db/postgres"
	"marilove.ru/question-bot/internal/features/questions"
	"marilove.ru/question-bot/internal/jobs"
	"marilove.ru/question-bot/internal/sessions"
	"marilove.ru/question-bot/internal/telegram"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Redis     *redis.Client // nil, если сессии в памяти
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен: компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Сессии админов ===
	tracker, rdb, err := newSessionTracker(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	// === 3. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		pool.Close()
		closeRedis(rdb)
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 4. Вопросы ===
	repo := questions.NewRepository(pool)
	sender := telegram.NewSender(botAPI)
	service := questions.NewService(repo, tracker, sender, cfg)
	handler := questions.NewHandler(service, sender, cfg)

	// === 5. Бот ===
	b := bot.New(botAPI, cfg, filters.NewRoleFilter(cfg), handler)

	// === 6. Планировщик задач ===
	scheduler := jobs.NewScheduler(service, cfg.AppTimezone)

	log.WithFields(log.Fields{
		"admins":        len(cfg.AdminIDs),
		"session_store": cfg.SessionStore,
	}).Info("Приложение собрано")

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		Redis:     rdb,
		BotAPI:    botAPI,
	}, nil
}

// Close освобождает соединения с БД и Redis.
func (a *App) Close() {
	closeRedis(a.Redis)
	a.DB.Close()
}

// newSessionTracker выбирает хранилище сессий по SESSION_STORE.
func newSessionTracker(ctx context.Context, cfg *config.Config) (questions.SessionTracker, *redis.Client, error) {
	if cfg.SessionStore != config.SessionStoreRedis {
		log.Warn("Сессии хранятся в памяти: после рестарта ответы продолжаются через /answer")
		return sessions.NewMemoryTracker(), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis недоступен (%s): %w", cfg.RedisAddr, err)
	}

	log.WithField("addr", cfg.RedisAddr).Info("Сессии хранятся в Redis")
	return sessions.NewRedisTracker(rdb, cfg.SessionTTL), rdb, nil
}

func closeRedis(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("Ошибка закрытия Redis")
	}
}
