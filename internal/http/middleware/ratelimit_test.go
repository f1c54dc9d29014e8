package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/taivu9x/bowling-score/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, header http.Header) int {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestLocalFallbackLimits(t *testing.T) {
	InitRedisRateLimiter("", "", 0)

	r := gin.New()
	r.GET("/test", RedisRateLimit(2, time.Minute), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		if code := do(r, "GET", "/test", nil); code != 200 {
			t.Fatalf("request %d: expected 200 got %d", i, code)
		}
	}
	if code := do(r, "GET", "/test", nil); code != 429 {
		t.Fatalf("expected 429 got %d", code)
	}
}

func TestGameRateLimitIsPerGame(t *testing.T) {
	InitRedisRateLimiter("", "", 0)

	r := gin.New()
	r.POST("/games/:id/roll", GameRateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(200)
	})

	if code := do(r, "POST", "/games/a/roll", nil); code != 200 {
		t.Fatalf("first roll on a: %d", code)
	}
	if code := do(r, "POST", "/games/a/roll", nil); code != 429 {
		t.Fatalf("second roll on a: %d", code)
	}
	if code := do(r, "POST", "/games/b/roll", nil); code != 200 {
		t.Fatalf("game b shares a's budget: %d", code)
	}
}

func TestJWTMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/m", JWT(), func(c *gin.Context) {
		c.String(200, c.GetString(ScorekeeperKey))
	})

	service.InitJWT("")
	if code := do(r, "POST", "/m", nil); code != 200 {
		t.Fatalf("disabled tokens should pass, got %d", code)
	}

	service.InitJWT("secret")
	defer service.InitJWT("")

	if code := do(r, "POST", "/m", nil); code != 401 {
		t.Fatalf("missing token: %d", code)
	}
	if code := do(r, "POST", "/m", http.Header{"Authorization": {"Bearer nope"}}); code != 401 {
		t.Fatalf("bad token: %d", code)
	}
	tok, err := service.GenerateJWT("lane-1", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if code := do(r, "POST", "/m", http.Header{"Authorization": {"Bearer " + tok}}); code != 200 {
		t.Fatalf("valid token: %d", code)
	}
}
