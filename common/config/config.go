package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/promptmyrep/civic/common/validation"
)

// Config holds all service configuration
type Config struct {
	Service    ServiceConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
	Directory  DirectoryConfig
	Generation GenerationConfig
	Auth       AuthConfig
	Features   FeatureFlags
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int    `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"` // text for development, json in production
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port        int           `env:"POSTGRES_PORT" envDefault:"5432"`
	Database    string        `env:"POSTGRES_DB" envDefault:"postgres"`
	User        string        `env:"POSTGRES_USER" envDefault:"postgres"`
	Password    string        `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	SSLMode     string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns    int           `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	MinConns    int           `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	MaxIdleTime time.Duration `env:"POSTGRES_MAX_IDLE_TIME" envDefault:"30m"`
	MaxLifetime time.Duration `env:"POSTGRES_MAX_LIFETIME" envDefault:"1h"`
	// Set when connecting through a transaction-mode pooler (Supabase port 6543)
	SimpleProtocol bool `env:"POSTGRES_SIMPLE_PROTOCOL" envDefault:"false"`
}

// CacheConfig holds cache settings
type CacheConfig struct {
	Enabled    bool          `env:"CACHE_ENABLED" envDefault:"true"`
	Backend    string        `env:"CACHE_BACKEND" envDefault:"memory"` // "memory" or "redis"
	MaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"4096"`
	DefaultTTL time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"1h"`
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof   bool `env:"ENABLE_PPROF" envDefault:"false"`
	PprofPort     int  `env:"PPROF_PORT" envDefault:"6060"`
	EnableMetrics bool `env:"ENABLE_METRICS" envDefault:"true"`
	MetricsPort   int  `env:"METRICS_PORT" envDefault:"9090"`
}

// DirectoryConfig holds the external lookup services used to resolve
// an address to its representatives. An empty key leaves that adapter disabled.
type DirectoryConfig struct {
	CensusURL        string        `env:"CENSUS_GEOCODER_URL" envDefault:"https://geocoding.geo.census.gov"`
	CongressURL      string        `env:"CONGRESS_GOV_URL" envDefault:"https://api.congress.gov"`
	CongressAPIKey   string        `env:"CONGRESS_GOV_API_KEY"`
	OpenStatesURL    string        `env:"OPENSTATES_URL" envDefault:"https://v3.openstates.org"`
	OpenStatesAPIKey string        `env:"OPENSTATES_API_KEY"`
	MembersCacheTTL  time.Duration `env:"CONGRESS_MEMBERS_CACHE_TTL" envDefault:"6h"`
}

// GenerationConfig holds the text generation settings
type GenerationConfig struct {
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	Model           string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	FallbackModel   string `env:"GEMINI_FALLBACK_MODEL" envDefault:"gemini-1.5-flash"`
	UserLimit       int64  `env:"GENERATE_USER_LIMIT" envDefault:"10"`
	UserLimitWindow int    `env:"GENERATE_USER_WINDOW_SEC" envDefault:"60"`
}

// AuthConfig holds the hosted auth backend settings
type AuthConfig struct {
	SupabaseURL     string        `env:"SUPABASE_URL"`
	SupabaseAnonKey string        `env:"SUPABASE_ANON_KEY"`
	JWTSecret       string        `env:"SUPABASE_JWT_SECRET"`
	CacheTTL        time.Duration `env:"AUTH_CACHE_TTL" envDefault:"1m"`
}

// FeatureFlags for optional behavior
type FeatureFlags struct {
	StrictDirectories     bool  `env:"STRICT_DIRECTORIES" envDefault:"false"`
	LookupIncludeGovernor bool  `env:"LOOKUP_INCLUDE_GOVERNOR" envDefault:"false"`
	LookupUserLimit       int64 `env:"LOOKUP_USER_LIMIT" envDefault:"20"`
}

// Load loads configuration from environment variables and validates it
func Load(serviceName string) (*Config, error) {
	cfg, err := Parse(serviceName)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Parse reads environment variables without validation.
// Tools that skip the HTTP surface (no auth backend) start from here.
func Parse(serviceName string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Service.Name = serviceName
	return cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("cache backend redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}

	if c.Auth.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}

	urls := validation.NewURLValidator()
	for name, value := range map[string]string{
		"SUPABASE_URL":        c.Auth.SupabaseURL,
		"CENSUS_GEOCODER_URL": c.Directory.CensusURL,
		"CONGRESS_GOV_URL":    c.Directory.CongressURL,
		"OPENSTATES_URL":      c.Directory.OpenStatesURL,
	} {
		if value == "" {
			continue
		}
		if err := urls.Validate(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Features.StrictDirectories {
		if c.Directory.CongressAPIKey == "" {
			return fmt.Errorf("CONGRESS_GOV_API_KEY is required when STRICT_DIRECTORIES is set")
		}
		if c.Directory.OpenStatesAPIKey == "" {
			return fmt.Errorf("OPENSTATES_API_KEY is required when STRICT_DIRECTORIES is set")
		}
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
