package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/taivu9x/bowling-score/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter connects the shared Redis client used by the middleware
// and returns it for reuse. If addr is empty or the ping fails it returns nil
// and the middleware falls back to in-process limiting.
func InitRedisRateLimiter(addr, password string, db int) *redis.Client {
	redisClient = nil
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limits", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	redisClient = client
	logger.Info("redis connected", "addr", addr)
	return client
}

// RedisRateLimit implements a simple fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<identifier>
// Without Redis it limits per process with a token bucket instead.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	local := localRateLimit(NewLocalLimiter(maxRequests, window))
	return func(c *gin.Context) {
		if redisClient == nil {
			local(c)
			return
		}

		ident := c.ClientIP()
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// on Redis error, fail-open (allow) but set header
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
