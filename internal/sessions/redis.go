package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// disarmScript удаляет ключ, только если в нём всё ещё ожидаемый вопрос.
var disarmScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTracker: сессии в Redis, переживают рестарт бота.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration // 0: без истечения
}

// NewRedisTracker создаёт трекер поверх клиента Redis.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

// Arm атомарно (MULTI/EXEC) читает прежний вопрос и записывает новый.
func (t *RedisTracker) Arm(ctx context.Context, adminID int64, questionID string) (string, error) {
	key := sessionKey(adminID)

	pipe := t.client.TxPipeline()
	prev := pipe.Get(ctx, key)
	pipe.Set(ctx, key, questionID, t.ttl)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("arm session %d: %w", adminID, err)
	}

	v, err := prev.Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("arm session %d: %w", adminID, err)
	}
	return v, nil
}

// Current возвращает вопрос, которого ждём от админа.
func (t *RedisTracker) Current(ctx context.Context, adminID int64) (string, bool, error) {
	v, err := t.client.Get(ctx, sessionKey(adminID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session %d: %w", adminID, err)
	}
	return v, true, nil
}

// Disarm сбрасывает сессию, только если она всё ещё ждёт questionID.
func (t *RedisTracker) Disarm(ctx context.Context, adminID int64, questionID string) (bool, error) {
	n, err := disarmScript.Run(ctx, t.client, []string{sessionKey(adminID)}, questionID).Int64()
	if err != nil {
		return false, fmt.Errorf("disarm session %d: %w", adminID, err)
	}
	return n == 1, nil
}

func sessionKey(adminID int64) string {
	return fmt.Sprintf("admin_session:%d", adminID)
}
