package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
}

// NewLocalLimiter allows maxRequests per window per key, refilled evenly.
func NewLocalLimiter(maxRequests int, window time.Duration) *LocalLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &LocalLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
	}
}

func (l *LocalLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// Sweep forgets keys idle since before cutoff.
func (l *LocalLimiter) Sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(l.limiters, k)
		}
	}
}

// SimpleRateLimit blocks clients that send more than maxRequests per window
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return localRateLimit(NewLocalLimiter(maxRequests, window))
}

func localRateLimit(l *LocalLimiter) gin.HandlerFunc {
	var calls int
	var mu sync.Mutex
	return func(c *gin.Context) {
		mu.Lock()
		calls++
		if calls%1000 == 0 {
			l.Sweep(time.Now().Add(-10 * time.Minute))
		}
		mu.Unlock()

		if !l.Allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
