package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"trackboard/internal/cache"
)

// Limiter applies a token bucket per client IP. Buckets of clients idle
// longer than VisitorTTL are forgotten.
type Limiter struct {
	visitors *cache.LRUCache[*rate.Limiter]
	limit    rate.Limit
	burst    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerSecond float64
	Burst             int
	VisitorTTL        time.Duration
	MaxVisitors       int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             20,
		VisitorTTL:        3 * time.Minute,
		MaxVisitors:       10000,
	}
}

func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = def.RequestsPerSecond
	}
	if config.Burst <= 0 {
		config.Burst = def.Burst
	}
	if config.VisitorTTL <= 0 {
		config.VisitorTTL = def.VisitorTTL
	}
	if config.MaxVisitors <= 0 {
		config.MaxVisitors = def.MaxVisitors
	}
	return &Limiter{
		visitors: cache.NewLRUCache[*rate.Limiter](config.MaxVisitors, config.VisitorTTL),
		limit:    rate.Limit(config.RequestsPerSecond),
		burst:    config.Burst,
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	return rl.limiter(clientIP).Allow()
}

func (rl *Limiter) limiter(clientIP string) *rate.Limiter {
	return rl.visitors.GetOrCreate(clientIP, func() *rate.Limiter {
		return rate.NewLimiter(rl.limit, rl.burst)
	})
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.visitors.Size()
}

// Visitors exposes the visitor cache so a cache.Manager can sweep it.
func (rl *Limiter) Visitors() cache.Cleaner {
	return rl.visitors
}

// retryAfter is the whole number of seconds until one token is available.
func (rl *Limiter) retryAfter() string {
	secs := math.Ceil(1 / float64(rl.limit))
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%.0f", secs)
}

// Middleware creates HTTP middleware for rate limiting. onLimit, when set,
// writes the rejection; Retry-After is always set.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", rl.retryAfter())
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
