package cache

import (
	"context"
	"time"

	"github.com/retail/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore remembers handled event keys in process memory.
// Used when Redis is disabled; a restart forgets every key.
type InMemoryIdempotencyStore struct {
	*expiringMap[string, struct{}]
}

// NewInMemoryIdempotencyStore creates a store that sweeps expired keys every five minutes
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{expiringMap: newExpiringMap[string, struct{}](5 * time.Minute)}
}

// MarkProcessed records key for ttl and reports whether it was new
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.putIfAbsent(key, struct{}{}, ttl), nil
}

// IsProcessed reports whether key was marked and has not expired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	_, ok := s.get(key)
	return ok, nil
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
