package infra

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DomainFeed configures the streaming feed for one market domain.
type DomainFeed struct {
	WSURL   string   `yaml:"ws_url"`
	RestURL string   `yaml:"rest_url"`
	Symbols []string `yaml:"symbols"`
}

// Config holds every application setting. Loaded from YAML, with
// credentials overridable through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		Spot    DomainFeed `yaml:"spot"`
		Futures DomainFeed `yaml:"futures"`

		Depth struct {
			WSURL  string `yaml:"ws_url"`
			Symbol string `yaml:"symbol"`
			Levels int    `yaml:"levels"`
		} `yaml:"depth"`

		API struct {
			Key    string `yaml:"key"`
			Secret string `yaml:"secret"`
		} `yaml:"api"`
	} `yaml:"feed"`

	UI struct {
		VisibleDepth     int  `yaml:"visible_depth"`
		ShowBids         bool `yaml:"show_bids"`
		ShowAsks         bool `yaml:"show_asks"`
		UpdateIntervalMS int  `yaml:"update_interval_ms"`
	} `yaml:"ui"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file. A .env file in the working
// directory is loaded first so MARKETPULSE_* variables can come from it.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine; it only exists in dev setups.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	for _, d := range []struct {
		name string
		feed DomainFeed
	}{{"spot", c.Feed.Spot}, {"futures", c.Feed.Futures}} {
		if len(d.feed.Symbols) == 0 {
			continue // domain disabled
		}
		if !isWSURL(d.feed.WSURL) {
			return fmt.Errorf("invalid %s feed WS URL: %s", d.name, d.feed.WSURL)
		}
	}

	if len(c.Feed.Spot.Symbols) == 0 && len(c.Feed.Futures.Symbols) == 0 {
		return fmt.Errorf("at least one market domain needs symbols")
	}

	if c.Feed.Depth.Symbol != "" && !isWSURL(c.Feed.Depth.WSURL) {
		return fmt.Errorf("invalid depth feed WS URL: %s", c.Feed.Depth.WSURL)
	}

	if c.UI.VisibleDepth <= 0 {
		return fmt.Errorf("visible depth must be positive")
	}
	if c.UI.UpdateIntervalMS <= 0 {
		return fmt.Errorf("update interval must be positive")
	}

	return nil
}

func isWSURL(s string) bool {
	return strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://")
}

// overrideWithEnv replaces credentials with environment values when set.
// Environment variables take precedence over the config file.
func overrideWithEnv(cfg *Config) {
	if cfg.Feed.API.Key != "" || cfg.Feed.API.Secret != "" {
		fmt.Println("⚠️  SECURITY WARNING: API credentials found in config file.")
		fmt.Println("   Recommendation: use MARKETPULSE_API_KEY / MARKETPULSE_API_SECRET instead.")
	}

	if key := os.Getenv("MARKETPULSE_API_KEY"); key != "" {
		cfg.Feed.API.Key = key
	}
	if secret := os.Getenv("MARKETPULSE_API_SECRET"); secret != "" {
		cfg.Feed.API.Secret = secret
	}
}
