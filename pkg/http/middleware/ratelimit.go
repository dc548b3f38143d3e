package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*visitor
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewRateLimiter allows perMinute requests per key with a burst of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 120
	}
	return &RateLimiter{
		buckets: make(map[string]*visitor),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		idleTTL: 10 * time.Minute,
	}
}

// Allow reports whether one more request for key fits in its bucket.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.buckets[key]
	if !ok {
		l.evictIdle(now)
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = v
	}
	v.seen = now
	return v.lim.AllowN(now, 1)
}

func (l *RateLimiter) evictIdle(now time.Time) {
	for k, v := range l.buckets {
		if now.Sub(v.seen) > l.idleTTL {
			delete(l.buckets, k)
		}
	}
}

// RateLimit rejects requests under pathPrefix that exceed the per-IP budget.
func RateLimit(l *RateLimiter, pathPrefix string, onLimit echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, pathPrefix) {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				return onLimit(c)
			}
			return next(c)
		}
	}
}
