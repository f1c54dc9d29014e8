package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_DRIVER", "API_RATE_LIMIT", "RECONNECT_ATTEMPTS", "RECONNECT_BASE_MS", "STRICT_FRAME_ORDER"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.AppPort != "8080" || cfg.StoreDriver != DriverMemory {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.ReconnectAttempts != 3 || cfg.ReconnectBase != time.Second {
		t.Fatalf("reconnect defaults = %d %v", cfg.ReconnectAttempts, cfg.ReconnectBase)
	}
	if cfg.StrictFrameOrder {
		t.Fatalf("strict order should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("API_RATE_WINDOW_SECONDS", "5")
	t.Setenv("STRICT_FRAME_ORDER", "true")
	t.Setenv("RECONNECT_BASE_MS", "250")
	t.Setenv("API_RATE_LIMIT", "-4")

	cfg := Load()
	if cfg.AppPort != "9000" || cfg.StoreDriver != DriverSQLite {
		t.Fatalf("overrides = %+v", cfg)
	}
	if cfg.APIRateWindow != 5*time.Second || cfg.ReconnectBase != 250*time.Millisecond {
		t.Fatalf("durations = %v %v", cfg.APIRateWindow, cfg.ReconnectBase)
	}
	if !cfg.StrictFrameOrder {
		t.Fatalf("strict order not read")
	}
	if cfg.APIRateLimit != 120 {
		t.Fatalf("negative limit should fall back, got %d", cfg.APIRateLimit)
	}
}
