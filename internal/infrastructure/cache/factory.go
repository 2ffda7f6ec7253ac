package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory builds the cart and idempotency stores from configuration.
// With Redis enabled both stores share one client; otherwise they live in memory.
type StoreFactory struct {
	redisConfig           config.RedisConfig
	cartConfig            config.CartConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	client *redis.Client
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// in-memory stores instead of failing startup. Default is false.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(redisCfg config.RedisConfig, cartCfg config.CartConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig: redisCfg,
		cartConfig:  cartCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect opens the Redis client when Redis is enabled. A connection failure is
// returned unless in-memory fallback is allowed, in which case it is logged.
func (f *StoreFactory) Connect(ctx context.Context) error {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, carts are kept in memory")
		return nil
	}

	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		if !f.allowInMemoryFallback {
			return fmt.Errorf("redis required for cart sessions but unavailable: %w", err)
		}
		f.logger.Warn("redis unavailable, falling back to in-memory carts; "+
			"carts will not be shared between instances",
			zap.Error(err),
		)
		return nil
	}

	f.client = client
	f.logger.Info("connected to redis", zap.String("addr", f.redisConfig.Addr()))
	return nil
}

// UsesRedis reports whether the stores are Redis-backed
func (f *StoreFactory) UsesRedis() bool {
	return f.client != nil
}

// Client returns the shared Redis client, or nil when running in memory
func (f *StoreFactory) Client() *redis.Client {
	return f.client
}

// CartStore returns the cart store for the current mode
func (f *StoreFactory) CartStore() trade.CartStore {
	if f.client != nil {
		return NewRedisCartStore(f.client, f.cartConfig.KeyPrefix, f.cartConfig.TTL)
	}
	return NewInMemoryCartStore(f.cartConfig.TTL)
}

// IdempotencyStore returns the processed-event store for the current mode
func (f *StoreFactory) IdempotencyStore() shared.IdempotencyStore {
	if f.client != nil {
		return NewRedisIdempotencyStore(f.client, "")
	}
	return NewInMemoryIdempotencyStore()
}

// Ping checks the Redis connection; it always succeeds in memory mode
func (f *StoreFactory) Ping(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	return f.client.Ping(ctx).Err()
}

// Close releases the Redis client
func (f *StoreFactory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
