// Package config loads service and client settings from .env files, an
// optional YAML/JSON file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arnavshah/roster-api-go/pkg/logging"
)

// EnvPrefix prefixes every structured environment override, e.g.
// ROSTER_SERVER__PORT=9000 sets server.port
const EnvPrefix = "ROSTER_"

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Logging  logging.Config `json:"logging"`
	Client   ClientConfig   `json:"client"`
}

type ServerConfig struct {
	Port int    `json:"port"`
	Mode string `json:"mode"`
}

// DatabaseConfig selects Postgres when DSN is set and SQLite at Path otherwise
type DatabaseConfig struct {
	DSN  string `json:"dsn"`
	Path string `json:"path"`
}

type AuthConfig struct {
	JWTSecret     string        `json:"jwt_secret"`
	APIKeySecret  string        `json:"api_key_secret"`
	AdminUsername string        `json:"admin_username"`
	AdminPassword string        `json:"admin_password"`
	TokenTTL      time.Duration `json:"token_ttl"`
	BcryptCost    int           `json:"bcrypt_cost"`
}

// ClientConfig is used by rosterctl to reach a running server
type ClientConfig struct {
	BaseURL   string        `json:"base_url"`
	APIKey    string        `json:"api_key"`
	Timeout   time.Duration `json:"timeout"`
	StateFile string        `json:"state_file"`
}

// Load reads .env, then path (if not empty), then ROSTER_ overrides. The
// plain variables understood by earlier releases (PORT, DATABASE_URL,
// DATA_PATH, JWT_SECRET, API_MASTER_SECRET, ADMIN_USERNAME, ADMIN_PASSWORD,
// GIN_MODE) fill whatever is still unset.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.applyLegacyEnv()
	cfg.SetDefaults()
	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads the first .env found in the working directory or its parents
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func (c *Config) applyLegacyEnv() {
	setString(&c.Server.Mode, "GIN_MODE")
	if c.Server.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.Server.Port = p
		}
	}
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Database.Path, "DATA_PATH")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.APIKeySecret, "API_MASTER_SECRET")
	setString(&c.Auth.AdminUsername, "ADMIN_USERNAME")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
}

func setString(dst *string, name string) {
	if *dst == "" {
		*dst = os.Getenv(name)
	}
}

func (c *Config) SetDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Database.Path == "" {
		c.Database.Path = "roster.db"
	}
	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = "admin"
	}
	if c.Auth.AdminPassword == "" {
		c.Auth.AdminPassword = "admin123"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 14
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = "http://localhost:8000"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 10 * time.Second
	}
	if c.Client.StateFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.Client.StateFile = filepath.Join(dir, "rosterctl", "state.json")
		} else {
			c.Client.StateFile = ".rosterctl.json"
		}
	}
}

func (s ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Port)
	}
	switch s.Mode {
	case "debug", "release", "test":
		return nil
	default:
		return fmt.Errorf("server.mode %q must be debug, release or test", s.Mode)
	}
}

// Validate checks the secrets a server needs before signing anything
func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	if a.APIKeySecret == "" {
		return errors.New("auth.api_key_secret (API_MASTER_SECRET) is required")
	}
	if a.BcryptCost < 4 || a.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost %d out of range 4-31", a.BcryptCost)
	}
	return nil
}

func (c ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("client.base_url is required")
	}
	if c.APIKey == "" {
		return errors.New("client.api_key (ROSTER_CLIENT__API_KEY) is required")
	}
	return nil
}
