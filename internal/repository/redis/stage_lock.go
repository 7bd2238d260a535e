package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// StageLock реализует repository.StageLock на SETNX с TTL.
// TTL ограничивает время жизни блокировки, если процесс упал посреди генерации.
type StageLock struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStageLock создает блокировку генерации этапов
func NewStageLock(client redis.UniversalClient, ttl time.Duration) *StageLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StageLock{client: client, ttl: ttl}
}

func stageLockKey(number int) string {
	return fmt.Sprintf("stage-lock:%d", number)
}

// Acquire пытается занять блокировку этапа
func (l *StageLock) Acquire(ctx context.Context, number int) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, stageLockKey(number), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire stage lock %d: %w", number, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release освобождает блокировку, если она принадлежит token
func (l *StageLock) Release(ctx context.Context, number int, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{stageLockKey(number)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release stage lock %d: %w", number, err)
	}
	return nil
}
