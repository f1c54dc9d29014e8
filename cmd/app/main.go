package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/taivu9x/bowling-score/internal/config"
	"github.com/taivu9x/bowling-score/internal/db"
	"github.com/taivu9x/bowling-score/internal/game"
	httpServer "github.com/taivu9x/bowling-score/internal/http"
	"github.com/taivu9x/bowling-score/internal/http/handlers"
	"github.com/taivu9x/bowling-score/internal/http/middleware"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/repository"
	"github.com/taivu9x/bowling-score/internal/service"
	"github.com/taivu9x/bowling-score/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer store.Close()

	hub := ws.NewHub()
	hub.StartCleanup(ctx)

	var notifier service.Notifier = hub
	checks := map[string]handlers.Pinger{"store": store}

	rdb := middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		relay := ws.NewRedisRelay(rdb, hub, ws.DefaultRelayChannel)
		notifier = relay
		checks["redis"] = redisPinger{rdb}
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("relay stopped", "error", err)
			}
		}()
	}

	games := service.NewGameService(store, game.Rules{StrictOrder: cfg.StrictFrameOrder}, notifier)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for the scoreboard frontend
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpServer.RegisterRoutes(r, httpServer.Deps{
		Config:  cfg,
		Games:   games,
		Hub:     hub,
		Checks:  checks,
		Version: version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited")
}

func openStore(ctx context.Context, cfg *config.Config) (repository.GameStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return repository.NewGameRepository(pool), nil
	case config.DriverSQLite:
		return repository.NewSQLiteStore(cfg.SQLitePath)
	}
	logger.Warn("using in-memory store, games are lost on restart")
	return repository.NewMemoryStore(), nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
