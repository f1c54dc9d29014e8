package middleware

import (
	"net/http"
	"strings"

	"github.com/taivu9x/bowling-score/internal/service"

	"github.com/gin-gonic/gin"
)

// ScorekeeperKey holds the token subject in the gin context.
const ScorekeeperKey = "scorekeeper"

// JWT requires a scorekeeper bearer token when JWT_SECRET is configured and
// lets everything through otherwise.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.JWTEnabled() {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		subject, err := service.ParseJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ScorekeeperKey, subject)
		c.Next()
	}
}
