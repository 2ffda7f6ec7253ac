package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultBlacklistKeyPrefix namespaces revocation keys in a shared Redis
const DefaultBlacklistKeyPrefix = "retail:token:revoked:"

// TokenBlacklist revokes tokens before they expire: a single token on logout,
// or every token of a user when the user is deactivated.
type TokenBlacklist interface {
	// Revoke blacklists one token id; ttl should be the token's remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a token id was revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeUser invalidates every token of userID issued up to now
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// IsUserRevoked reports whether a token issued at issuedAt predates the user's revocation
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist keeps revocations in Redis so every replica sees them
type RedisTokenBlacklist struct {
	client    redis.Cmdable
	keyPrefix string
	now       func() time.Time
}

// NewRedisTokenBlacklist creates a blacklist over an existing client. The
// client's lifecycle belongs to the caller.
func NewRedisTokenBlacklist(client redis.Cmdable, keyPrefix string) *RedisTokenBlacklist {
	if keyPrefix == "" {
		keyPrefix = DefaultBlacklistKeyPrefix
	}
	return &RedisTokenBlacklist{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID string) string {
	return b.keyPrefix + "user:" + userID
}

// Revoke blacklists a token id
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id was revoked
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores the revocation instant for the user
func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), b.now().UnixNano(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// IsUserRevoked compares the token's issue time with the stored revocation instant
func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation instant %q: %w", raw, err)
	}
	return issuedAt.UnixNano() <= revokedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is the single-process blacklist used when Redis is disabled
type InMemoryTokenBlacklist struct {
	mu        sync.Mutex
	tokens    map[string]time.Time // jti -> expiry of the revocation
	revokedAt map[string]time.Time // userID -> revocation instant
	now       func() time.Time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:    make(map[string]time.Time),
		revokedAt: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Revoke blacklists a token id
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.now().Add(ttl)
	return nil
}

// IsRevoked reports whether a token id was revoked and the entry is still live
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(expiry) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeUser records the revocation instant for the user
func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revokedAt[userID] = b.now()
	return nil
}

// IsUserRevoked reports whether a token issued at issuedAt predates the revocation
func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	revokedAt, ok := b.revokedAt[userID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(revokedAt), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
