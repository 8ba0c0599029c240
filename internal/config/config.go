// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MaxQuestionLengthLimit: верхняя граница MAX_QUESTION_LENGTH. Вопрос
// с подписью канала должен уложиться в 4096 символов сообщения Telegram.
const MaxQuestionLengthLimit = 3500

// Хранилища сессий администраторов.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполняется в Load
	// Канал публикации: @username (публичный) или -100... (приватный)
	ChannelRaw      string `envconfig:"CHANNEL_ID" required:"true"`
	ChannelChatID   int64  `envconfig:"-"`
	ChannelUsername string `envconfig:"-"`
	// Ссылка на канал для подтверждения пользователю
	ChannelLink string `envconfig:"CHANNEL_LINK" default:"@marilove_channel"`

	// --- Questions ---
	MaxQuestionLength int `envconfig:"MAX_QUESTION_LENGTH" default:"1000"`
	// Сбрасывать ожидание кружочка, если админ прислал не тот контент
	DisarmOnWrongContent bool `envconfig:"DISARM_ON_WRONG_CONTENT" default:"false"`
	// Через сколько принятый вопрос без ответа попадает в напоминание
	StaleApprovalAfter time.Duration `envconfig:"STALE_APPROVAL_AFTER" default:"24h"`
	// Сколько дней хранить отклонённые вопросы (0: не удалять)
	RejectedRetentionDays int    `envconfig:"REJECTED_RETENTION_DAYS" default:"30"`
	BackupDir             string `envconfig:"BACKUP_DIR" default:"backups"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"questions"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Sessions ---
	SessionStore  string        `envconfig:"SESSION_STORE" default:"memory"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"redis:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"0"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Config) Validate() error {
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_IDS не содержит ни одного ID")
	}
	if c.ChannelChatID == 0 && c.ChannelUsername == "" {
		return fmt.Errorf("CHANNEL_ID не задан")
	}
	if c.MaxQuestionLength <= 0 {
		return fmt.Errorf("MAX_QUESTION_LENGTH должен быть > 0")
	}
	if c.MaxQuestionLength > MaxQuestionLengthLimit {
		return fmt.Errorf("MAX_QUESTION_LENGTH должен быть не больше %d", MaxQuestionLengthLimit)
	}
	if c.RejectedRetentionDays < 0 {
		return fmt.Errorf("REJECTED_RETENTION_DAYS не может быть отрицательным")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE должен быть %q или %q, получено %q",
			SessionStoreMemory, SessionStoreRedis, c.SessionStore)
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	chatID, username, err := parseChannel(cfg.ChannelRaw)
	if err != nil {
		return nil, fmt.Errorf("CHANNEL_ID parse: %w", err)
	}
	cfg.ChannelChatID = chatID
	cfg.ChannelUsername = username

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseChannel разбирает CHANNEL_ID: "@name" → username, "-100123" → chat id.
func parseChannel(s string) (int64, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", nil
	}
	if strings.HasPrefix(s, "@") {
		if len(s) == 1 {
			return 0, "", fmt.Errorf("пустое имя канала")
		}
		return 0, s, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("bad channel %q: %w", s, err)
	}
	return id, "", nil
}
