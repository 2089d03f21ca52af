// Package config loads gateway configuration from the environment, with an
// optional YAML overlay for deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend selects where community and catalog data lives.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config is the full gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  string         `env:"BACKEND,default=supabase" yaml:"backend"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Postgres PostgresConfig `yaml:"postgres"`
	Device   DeviceConfig   `yaml:"device"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR,default=:8080" yaml:"addr"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT,default=10s" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT,default=30s" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=15s" yaml:"shutdown_timeout"`
	AllowedOrigins  string        `env:"CORS_ALLOWED_ORIGINS,default=*" yaml:"allowed_origins"`
	RatePerSecond   int           `env:"RATE_LIMIT_PER_SECOND,default=20" yaml:"rate_per_second"`
	RateBurst       int           `env:"RATE_LIMIT_BURST,default=40" yaml:"rate_burst"`
}

// SupabaseConfig holds project credentials. ServiceRoleKey is used by the
// seeder only; the gateway runs with the anon key plus per-request tokens.
type SupabaseConfig struct {
	URL            string `env:"SUPABASE_URL" yaml:"url"`
	AnonKey        string `env:"SUPABASE_ANON_KEY" yaml:"anon_key"`
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY" yaml:"service_role_key"`
	JWTSecret      string `env:"SUPABASE_JWT_SECRET" yaml:"jwt_secret"`
	Realtime       bool   `env:"SUPABASE_REALTIME,default=false" yaml:"realtime"`
}

// PostgresConfig holds the direct-Postgres DSN for self-hosted deployments.
type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN" yaml:"dsn"`
}

// DeviceConfig holds the local SQLite store for anonymous device state.
type DeviceConfig struct {
	Path string `env:"DEVICE_STORE_PATH,default=./device.db" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"LOG_LEVEL,default=info" yaml:"level"`
}

// Load reads configuration from the environment. envFile, when non-empty,
// is loaded first via godotenv; yamlFile, when non-empty, overlays the
// decoded environment values.
func Load(envFile, yamlFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if yamlFile != "" {
		data, err := os.ReadFile(yamlFile)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", yamlFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", yamlFile, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("backend %s requires POSTGRES_DSN", c.Backend)
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return fmt.Errorf("backend %s requires SUPABASE_URL and SUPABASE_ANON_KEY", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// Origins splits the allowed-origins setting into a slice.
func (c ServerConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
