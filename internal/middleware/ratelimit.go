package middleware

import (
	"backend/pkg/response"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// windowEntry tracks request count for a key within the current window
type windowEntry struct {
	count     int
	expiresAt time.Time
}

// FixedWindowLimiter allows up to `limit` calls per key per `window`.
// Expired entries are replaced lazily on the next call for the same key.
type FixedWindowLimiter struct {
	limit   int
	window  time.Duration
	entries sync.Map // key -> *windowEntry
	mu      sync.Mutex
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{limit: limit, window: window}
}

// Allow reports whether another call for key fits in the current window
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if v, ok := l.entries.Load(key); ok {
		entry := v.(*windowEntry)
		if now.Before(entry.expiresAt) {
			if entry.count >= l.limit {
				return false
			}
			entry.count++
			return true
		}
	}

	l.entries.Store(key, &windowEntry{count: 1, expiresAt: now.Add(l.window)})
	return true
}

// RateLimit rejects requests over the per-IP budget with 429
func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Error(http.StatusTooManyRequests, "Too many requests, try again later"))
			return
		}
		c.Next()
	}
}
