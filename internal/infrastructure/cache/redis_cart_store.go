package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
)

// DefaultCartKeyPrefix namespaces cart keys
const DefaultCartKeyPrefix = "retail:cart:"

// RedisCartStore keeps open carts in Redis so that any server instance can
// continue a checkout. Each Save refreshes the key's TTL.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a cart store on an existing client
func NewRedisCartStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = DefaultCartKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &RedisCartStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Save stores the cart and resets its expiry
func (s *RedisCartStore) Save(ctx context.Context, cart *trade.Sale) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(cart.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Get loads a cart, returning shared.ErrNotFound when it is missing or expired
func (s *RedisCartStore) Get(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return decodeCart(data)
}

// Delete removes a cart
func (s *RedisCartStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

func (s *RedisCartStore) key(id uuid.UUID) string {
	return s.keyPrefix + id.String()
}

// Ensure RedisCartStore implements CartStore
var _ trade.CartStore = (*RedisCartStore)(nil)
