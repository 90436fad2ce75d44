package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Feed.Spot.WSURL = "wss://stream.binance.com:9443/ws"
	cfg.Feed.Spot.Symbols = []string{"BTCUSDT"}
	cfg.UI.VisibleDepth = 15
	cfg.UI.UpdateIntervalMS = 1000
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		if err := validConfig().Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("no domain with symbols fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.Spot.Symbols = nil
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for config without any symbols")
		}
	})

	t.Run("bad ws url on enabled domain fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.Spot.WSURL = "https://not-a-ws-url"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for non-ws URL")
		}
	})

	t.Run("disabled domain skips url check", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.Futures.WSURL = "bogus"
		cfg.Feed.Futures.Symbols = nil
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil for disabled domain", err)
		}
	})

	t.Run("depth symbol requires depth ws url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.Depth.Symbol = "BTCUSDT"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for depth symbol without ws url")
		}
	})

	t.Run("non-positive visible depth fails", func(t *testing.T) {
		cfg := validConfig()
		cfg.UI.VisibleDepth = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero visible depth")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	writeConfig := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		return path
	}

	t.Run("parses valid yaml", func(t *testing.T) {
		path := writeConfig(t, `
feed:
  spot:
    ws_url: "wss://stream.binance.com:9443/ws"
    symbols: ["BTCUSDT", "ETHUSDT"]
ui:
  visible_depth: 15
  show_bids: true
  show_asks: true
  update_interval_ms: 500
logging:
  level: "debug"
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if len(cfg.Feed.Spot.Symbols) != 2 {
			t.Errorf("got %d spot symbols, want 2", len(cfg.Feed.Spot.Symbols))
		}
		if cfg.UI.VisibleDepth != 15 {
			t.Errorf("VisibleDepth = %d, want 15", cfg.UI.VisibleDepth)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
		}
	})

	t.Run("env overrides credentials", func(t *testing.T) {
		t.Setenv("MARKETPULSE_API_KEY", "env-key")
		t.Setenv("MARKETPULSE_API_SECRET", "env-secret")

		path := writeConfig(t, `
feed:
  spot:
    ws_url: "wss://stream.binance.com:9443/ws"
    symbols: ["BTCUSDT"]
ui:
  visible_depth: 10
  update_interval_ms: 1000
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Feed.API.Key != "env-key" || cfg.Feed.API.Secret != "env-secret" {
			t.Errorf("env override not applied: key=%q secret=%q",
				cfg.Feed.API.Key, cfg.Feed.API.Secret)
		}
	})

	t.Run("missing file errors", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		path := writeConfig(t, `
ui:
  visible_depth: 15
  update_interval_ms: 1000
`)
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for config without symbols")
		}
	})
}
