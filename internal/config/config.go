package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/taivu9x/bowling-score/internal/logger"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort       string
	StoreDriver   string
	DatabaseURL   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string // empty disables scorekeeper tokens
	AllowedOrigin string
	LogLevel      string
	LogJSON       bool

	// API limits
	APIRateLimit      int
	APIRateWindow     time.Duration
	MutationRateLimit int

	StrictFrameOrder bool

	// Observer side (cmd/watch)
	ReconnectAttempts int
	ReconnectBase     time.Duration
	APIURL            string
	WSURL             string
}

// Load reads the environment, after merging an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           envString("APP_PORT", "8080"),
		StoreDriver:       strings.ToLower(envString("STORE_DRIVER", DriverMemory)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        envString("SQLITE_PATH", "bowling.db"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envInt("REDIS_DB", 0),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AllowedOrigin:     os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:          envString("LOG_LEVEL", "info"),
		LogJSON:           envBool("LOG_JSON", false),
		APIRateLimit:      envInt("API_RATE_LIMIT", 120),
		APIRateWindow:     time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		MutationRateLimit: envInt("MUTATION_RATE_LIMIT", 600),
		StrictFrameOrder:  envBool("STRICT_FRAME_ORDER", false),
		ReconnectAttempts: envInt("RECONNECT_ATTEMPTS", 3),
		ReconnectBase:     time.Duration(envInt("RECONNECT_BASE_MS", 1000)) * time.Millisecond,
		APIURL:            envString("API_URL", "http://127.0.0.1:8080/api"),
		WSURL:             envString("WS_URL", "ws://127.0.0.1:8080/ws"),
	}

	switch cfg.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is not set")
		}
	default:
		logger.Fatal("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
	}

	return cfg
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt falls back to def on a missing, malformed or non-positive value.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
