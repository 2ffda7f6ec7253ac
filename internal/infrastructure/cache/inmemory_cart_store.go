package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
)

// DefaultCartTTL is how long an untouched cart survives
const DefaultCartTTL = 2 * time.Hour

// InMemoryCartStore keeps carts in process memory. Carts are stored serialized,
// so callers never share a *trade.Sale with the store.
// Suitable for a single server instance and for tests.
type InMemoryCartStore struct {
	*expiringMap[uuid.UUID, []byte]
	ttl time.Duration
}

// NewInMemoryCartStore creates a store that sweeps abandoned carts every minute
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &InMemoryCartStore{
		expiringMap: newExpiringMap[uuid.UUID, []byte](time.Minute),
		ttl:         ttl,
	}
}

// Save stores the cart and resets its expiry
func (s *InMemoryCartStore) Save(_ context.Context, cart *trade.Sale) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}
	s.put(cart.ID, data, s.ttl)
	return nil
}

// Get loads a cart, returning shared.ErrNotFound when it is missing or expired
func (s *InMemoryCartStore) Get(_ context.Context, id uuid.UUID) (*trade.Sale, error) {
	data, ok := s.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return decodeCart(data)
}

// Delete removes a cart
func (s *InMemoryCartStore) Delete(_ context.Context, id uuid.UUID) error {
	s.delete(id)
	return nil
}

var _ trade.CartStore = (*InMemoryCartStore)(nil)
