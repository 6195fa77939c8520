package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the process configuration.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	NATS     NATSConfig     `yaml:"nats"`
	Store    StoreConfig    `yaml:"store"`
	Session  SessionConfig  `yaml:"session"`
	HTTP     HTTPConfig     `yaml:"http"`
	// OwnerUserID is always treated as a global administrator, so a fresh
	// deployment can bootstrap the administrator list.
	OwnerUserID string `yaml:"owner_user_id"`
}

// PostgresConfig holds the relational backend settings. An empty DSN selects
// the file backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds the bot event-bus settings. An empty URL disables the bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// StoreConfig holds the file backend settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig holds the session cookie settings. ServiceToken authenticates
// the web collaborator on the session exchange endpoint; when empty the
// endpoint is disabled.
type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	ServiceToken string        `yaml:"service_token"`
}

// HTTPConfig holds the settings for the HTTP surface.
type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file is missing.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Session.Secret = v
	}
	if v := os.Getenv("SERVICE_TOKEN"); v != "" {
		cfg.Session.ServiceToken = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("OWNER_USER_ID"); v != "" {
		cfg.OwnerUserID = v
	}

	cfg.applyDefaults()

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("session secret is required (SESSION_SECRET)")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Path == "" {
		c.Store.Path = "data/guildboard.json"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
}
