package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/packagehub/hub-web/internal/config"
)

// OpenRedis connects to Redis and verifies the connection with a PING.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewStore builds the store selected by cfg.Store. rdb is required for the
// redis store and ignored otherwise.
func NewStore(cfg config.SessionConfig, rdb redis.UniversalClient) (Store, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		return NewRedisStore(rdb, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
