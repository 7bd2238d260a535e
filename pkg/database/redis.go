package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/debate-tab/internal/config"
)

const redisPingTimeout = 5 * time.Second

// NewUniversalRedisClient подключается к Redis, где хранятся кеш табуляции,
// блокировки генерации этапов и счётчики лимита отправки оценок.
func NewUniversalRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	options, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (mode: %s, addrs: %v): %w", redisMode(cfg), options.Addrs, err)
	}
	return client, nil
}

// redisOptions переводит конфигурацию в опции клиента.
// single: один узел; sentinel: мастер определяется по MasterName.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	addrs := cfg.Addrs
	if len(addrs) == 0 && cfg.Addr != "" {
		addrs = []string{cfg.Addr}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis configuration error: addrs or addr must be provided")
	}

	options := &redis.UniversalOptions{
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}

	switch mode := redisMode(cfg); mode {
	case "single":
		// Несколько адресов без MasterName клиент принял бы за кластер
		options.Addrs = addrs[:1]
	case "sentinel":
		if cfg.MasterName == "" {
			return nil, fmt.Errorf("redis sentinel mode requires master_name")
		}
		options.Addrs = addrs
		options.MasterName = cfg.MasterName
	default:
		return nil, fmt.Errorf("unsupported redis mode: %s", mode)
	}
	return options, nil
}

func redisMode(cfg config.RedisConfig) string {
	if cfg.Mode == "" {
		return "single"
	}
	return cfg.Mode
}
