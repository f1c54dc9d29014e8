package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GameRateLimit caps mutations per game (not per IP), so a runaway
// scorekeeper cannot flood a game's observers with updates.
// Uses the :id route parameter.
func GameRateLimit(maxMutations int, window time.Duration) gin.HandlerFunc {
	local := NewLocalLimiter(maxMutations, window)
	return func(c *gin.Context) {
		gameID := c.Param("id")
		if gameID == "" {
			c.Next()
			return
		}
		label := "game:" + c.FullPath()

		if redisClient == nil {
			if !local.Allow(gameID) {
				RLBlocked.WithLabelValues(label).Inc()
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "game rate limit exceeded"})
				return
			}
			RLRequests.WithLabelValues(label).Inc()
			c.Next()
			return
		}

		key := "game_rl:" + gameID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := c.Request.Context()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			c.Header("X-GameRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-GameRateLimit-Limit", strconv.Itoa(maxMutations))
		c.Header("X-GameRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxMutations)-val), 10))

		if val > int64(maxMutations) {
			RLBlocked.WithLabelValues(label).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "game rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(label).Inc()
		c.Next()
	}
}
