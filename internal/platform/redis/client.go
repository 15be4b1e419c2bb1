package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasker-api/internal/config"
)

// NewClient creates a Redis client from cfg and verifies it with PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is not configured")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
