package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// Rate limit response headers
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// RateLimiter keeps one token bucket per client key. A client may burst up
// to limit requests and then gets limit requests per window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   int
	every   rate.Limit
	idleTTL time.Duration
	swept   time.Time
	now     func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		idleTTL: 2 * window,
		now:     time.Now,
	}
}

// Allow consumes a token for key. When the bucket is empty it returns the
// time until the next token.
func (rl *RateLimiter) Allow(key string) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	cl, exists := rl.clients[key]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	if cl.limiter.AllowN(now, 1) {
		return int(math.Floor(cl.limiter.TokensAt(now))), 0, true
	}

	r := cl.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return 0, delay, false
}

// Limit returns the configured burst
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Clients returns the number of tracked client keys
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweep drops clients idle for longer than idleTTL; runs at most once per idleTTL
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.swept) < rl.idleTTL {
		return
	}
	rl.swept = now
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key returned by keyFunc
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.Limit())
	return func(c *gin.Context) {
		remaining, retryAfter, ok := limiter.Allow(keyFunc(c))
		c.Header(HeaderRateLimitLimit, limit)
		c.Header(HeaderRateLimitRemaining, strconv.Itoa(remaining))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(max(1, int(retryAfter.Round(time.Second)/time.Second))))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
