// Package cache provides the idempotency response stores used by the
// create and update endpoints.
package cache

import (
	"fmt"

	"github.com/profilegateway/backend/internal/domain/shared"
	"github.com/profilegateway/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connectRedis          func(config.RedisConfig) (shared.IdempotencyStore, error)
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connectRedis: func(c config.RedisConfig) (shared.IdempotencyStore, error) {
			return NewRedisIdempotencyStore(c)
		},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based idempotency store
func (f *IdempotencyStoreFactory) CreateRedisStore() (shared.IdempotencyStore, error) {
	store, err := f.connectRedis(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}
	return store, nil
}

// CreateInMemoryStore creates an in-memory idempotency store
// WARNING: In-memory stores do not share state across process instances,
// so a retried request routed to another instance is executed again
func (f *IdempotencyStoreFactory) CreateInMemoryStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateStore creates the store named by kind ("memory" or "redis").
// For "redis" it falls back to in-memory when Redis is unreachable and
// fallback is allowed.
func (f *IdempotencyStoreFactory) CreateStore(kind string) (shared.IdempotencyStore, error) {
	switch kind {
	case config.StoreMemory:
		f.logger.Info("Using in-memory idempotency store")
		return f.CreateInMemoryStore(), nil
	case config.StoreRedis:
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", kind)
	}

	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Replays are not shared across instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
