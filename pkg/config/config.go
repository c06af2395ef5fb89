package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for starfusion-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets must
// only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// MigrationsPath is the directory holding SQL migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Upstream source endpoints
	Sources SourcesConfig `yaml:"sources"`

	// Merge pipeline tuning
	Pipeline PipelineConfig `yaml:"pipeline"`

	// History read surface
	History HistoryConfig `yaml:"history"`

	// Optional bearer auth for the API surface
	Auth AuthConfig `yaml:"auth"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"starfusion"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"starfusion_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// SourcesConfig holds the two upstream lookup endpoints.
type SourcesConfig struct {
	// PeopleURL serves the primary character list, either as a bare JSON
	// array or wrapped in a "results" object.
	PeopleURL string `yaml:"people_url" env:"SOURCE_PEOPLE_URL" env-default:"https://swapi.dev/api/people"`
	// WeatherURL is the forecast endpoint queried once per character.
	WeatherURL string `yaml:"weather_url" env:"SOURCE_WEATHER_URL" env-default:"https://api.open-meteo.com/v1/forecast"`
	// WeatherLongitude is the fixed longitude sent on every enrichment call.
	WeatherLongitude string `yaml:"weather_longitude" env:"SOURCE_WEATHER_LONGITUDE" env-default:"167.6917"`
	// HTTPTimeout bounds each outbound call; applied to the injected
	// http.Client, not inside the pipeline.
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"SOURCE_HTTP_TIMEOUT" env-default:"30s"`
}

// PipelineConfig tunes the merge pipeline.
type PipelineConfig struct {
	// CacheTTL is the freshness window for returning a cached snapshot
	// without hitting the upstream sources.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"PIPELINE_CACHE_TTL" env-default:"1m"`
	// EnrichConcurrency caps in-flight enrichment calls per invocation.
	EnrichConcurrency int `yaml:"enrich_concurrency" env:"PIPELINE_ENRICH_CONCURRENCY" env-default:"5"`
}

// HistoryConfig tunes the history read surface.
type HistoryConfig struct {
	DefaultLimit int `yaml:"default_limit" env:"HISTORY_DEFAULT_LIMIT" env-default:"20"`
	MaxLimit     int `yaml:"max_limit" env:"HISTORY_MAX_LIMIT" env-default:"100"`
}

// AuthConfig holds the optional shared secret for bearer token validation.
// When JWTSecret is empty the API surface is open.
type AuthConfig struct {
	JWTSecret string `yaml:"-" env:"AUTH_JWT_SECRET"`
}

// Load reads configuration from config.yaml (when present) and the
// environment. A local .env file is honored for development.
func Load(version string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.EnrichConcurrency < 1 {
		return fmt.Errorf("pipeline enrich_concurrency must be at least 1, got %d", c.Pipeline.EnrichConcurrency)
	}
	if c.Pipeline.CacheTTL <= 0 {
		return fmt.Errorf("pipeline cache_ttl must be positive, got %s", c.Pipeline.CacheTTL)
	}
	if c.History.DefaultLimit < 1 || c.History.MaxLimit < c.History.DefaultLimit {
		return fmt.Errorf("history limits misconfigured: default=%d max=%d", c.History.DefaultLimit, c.History.MaxLimit)
	}
	if c.Sources.PeopleURL == "" || c.Sources.WeatherURL == "" {
		return fmt.Errorf("source URLs must not be empty")
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}
