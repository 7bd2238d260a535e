package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// GetJSON возвращает ErrNotFound, если ключа нет
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// StageLock: распределённая блокировка генерации этапа
type StageLock interface {
	// Acquire возвращает токен владельца; ok=false, если блокировка занята
	Acquire(ctx context.Context, number int) (token string, ok bool, err error)
	Release(ctx context.Context, number int, token string) error
}
