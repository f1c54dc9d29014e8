package http

import (
	"github.com/taivu9x/bowling-score/internal/config"
	"github.com/taivu9x/bowling-score/internal/http/handlers"
	"github.com/taivu9x/bowling-score/internal/http/middleware"
	"github.com/taivu9x/bowling-score/internal/service"
	"github.com/taivu9x/bowling-score/internal/ws"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router needs from cmd/app.
type Deps struct {
	Config  *config.Config
	Games   *service.GameService
	Hub     *ws.Hub
	Checks  map[string]handlers.Pinger
	Version string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Games)
	healthHandler := handlers.NewHealthHandler(d.Checks, d.Version)

	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	apiRL := middleware.RedisRateLimit(d.Config.APIRateLimit, d.Config.APIRateWindow)
	gameRL := middleware.GameRateLimit(d.Config.MutationRateLimit, d.Config.APIRateWindow)

	v1 := r.Group("/api/v1")
	v1.Use(apiRL)
	registerAPIRoutes(v1, h, gameRL)

	// Unversioned paths used by the scoreboard frontend
	api := r.Group("/api")
	api.Use(apiRL)
	api.GET("/health", healthHandler.Health)
	registerAPIRoutes(api, h, gameRL)

	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.Config.AllowedOrigin))
	}
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, gameRL gin.HandlerFunc) {
	api.GET("/games", h.ListGames)
	api.GET("/games/:id", h.GetGame)
	api.POST("/games", middleware.JWT(), h.CreateGame)

	games := api.Group("/games/:id")
	games.Use(middleware.JWT(), gameRL)
	{
		games.POST("/join", h.JoinGame)
		games.DELETE("/leave", h.LeaveGame)
		games.POST("/start", h.StartGame)
		games.POST("/roll", h.Roll)
		games.POST("/complete", h.CompleteGame)
	}
}
