package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/taivu9x/bowling-score/internal/config"
	"github.com/taivu9x/bowling-score/internal/logger"
	"github.com/taivu9x/bowling-score/internal/service"
)

// Prints a scorekeeper token signed with JWT_SECRET.
func main() {
	subject := flag.String("sub", "scorekeeper", "token subject, e.g. a lane or device name")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(cfg.JWTSecret)

	token, err := service.GenerateJWT(*subject, *ttl)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	if _, err := service.ParseJWT(token); err != nil {
		logger.Fatal("token does not verify", "error", err)
	}
	fmt.Println(token)
}
