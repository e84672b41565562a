package cache

import (
	"fmt"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the configured idempotency store. The redis
// backend falls back to the in-memory store when the connection fails, with
// a warning: a fallback store does not share state across instances.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.Idempotency.Backend {
	case "redis":
		store, err := NewRedisIdempotencyStore(RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			logger.Info("using Redis idempotency store")
			return store, nil
		}
		if cfg.App.Env == "production" {
			return nil, fmt.Errorf("redis idempotency store required in production: %w", err)
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.Error(err))
		return NewInMemoryIdempotencyStore(), nil
	case "memory":
		return NewInMemoryIdempotencyStore(), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}
