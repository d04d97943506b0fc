package middleware

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/KirkDiggler/sheet-bot/internal/discord/v2/core"
)

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	// Rate is the sustained number of interactions allowed per second
	Rate rate.Limit

	// Burst is how many interactions may arrive at once
	Burst int

	// KeyFunc extracts the rate limit key from context
	KeyFunc func(*core.InteractionContext) string

	// Message shown when rate limited
	Message string

	// IdleTTL drops limiters for keys not seen this long
	IdleTTL time.Duration
}

func defaultKeyFunc(ctx *core.InteractionContext) string {
	return ctx.UserID
}

// RateLimitMiddleware applies token-bucket rate limiting per key
func RateLimitMiddleware(config *RateLimitConfig) core.Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = defaultKeyFunc
	}
	if config.Message == "" {
		config.Message = "You're doing that too fast! Please wait a moment before trying again."
	}

	pool := newLimiterPool(config.Rate, config.Burst, config.IdleTTL)

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			key := config.KeyFunc(ctx)
			if key == "" {
				return next.Handle(ctx)
			}

			if !pool.allow(key) {
				return &core.HandlerResult{
					Response: core.NewEphemeralResponse("⏱️ " + config.Message),
				}, nil
			}

			return next.Handle(ctx)
		})
	}
}

// UserRateLimitMiddleware allows maxRequests per window for each user
func UserRateLimitMiddleware(maxRequests int, window time.Duration) core.Middleware {
	return RateLimitMiddleware(&RateLimitConfig{
		Rate:    rate.Every(window / time.Duration(maxRequests)),
		Burst:   maxRequests,
		Message: fmt.Sprintf("You're doing that too fast! You can use this %d times every %v.", maxRequests, window),
	})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool lazily creates one limiter per key and evicts idle ones
type limiterPool struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

func newLimiterPool(limit rate.Limit, burst int, ttl time.Duration) *limiterPool {
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &limiterPool{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	p.evict(now)

	entry, ok := p.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.entries[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// evict drops entries idle longer than ttl; callers hold mu
func (p *limiterPool) evict(now time.Time) {
	cutoff := now.Add(-p.ttl)
	for k, e := range p.entries {
		if e.lastSeen.Before(cutoff) {
			delete(p.entries, k)
		}
	}
}
