package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty: every field tag carries the full COMANDA_ name.
const EnvPrefix = ""

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Comanda   ComandaConfig
}

type AppConfig struct {
	Port       string `envconfig:"COMANDA_APP_PORT" default:"8080"`
	GinMode    string `envconfig:"COMANDA_GIN_MODE" default:"debug"`
	LogLevel   string `envconfig:"COMANDA_LOG_LEVEL" default:"info"`
	CORSOrigin string `envconfig:"COMANDA_CORS_ORIGIN" default:"*"`
	Seed       bool   `envconfig:"COMANDA_SEED" default:"false"`
}

type DBConfig struct {
	Driver          string        `envconfig:"COMANDA_DB_DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"COMANDA_DB_DSN" default:"comanda.db"`
	MaxOpenConns    int           `envconfig:"COMANDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMANDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMANDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	LogQueries      bool          `envconfig:"COMANDA_DB_LOG_QUERIES" default:"false"`
}

type RedisConfig struct {
	URL     string        `envconfig:"COMANDA_REDIS_URL"`
	LockTTL time.Duration `envconfig:"COMANDA_REDIS_LOCK_TTL" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type JWTConfig struct {
	Secret string `envconfig:"COMANDA_JWT_SECRET" required:"true"`
}

type RateLimitConfig struct {
	RPS   float64 `envconfig:"COMANDA_RATE_LIMIT_RPS" default:"50"`
	Burst int     `envconfig:"COMANDA_RATE_LIMIT_BURST" default:"100"`
}

type ComandaConfig struct {
	MergeMaxRetries uint64        `envconfig:"COMANDA_MERGE_MAX_RETRIES" default:"3"`
	MergeBaseDelay  time.Duration `envconfig:"COMANDA_MERGE_BASE_DELAY" default:"10ms"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, bool, error) {
	dotenvLoaded := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, dotenvLoaded, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, dotenvLoaded, err
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, dotenvLoaded, fmt.Errorf("COMANDA_JWT_SECRET is required")
	}
	return &cfg, dotenvLoaded, nil
}

func (d DBConfig) validate() error {
	switch strings.ToLower(d.Driver) {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", d.Driver)
	}
	if strings.TrimSpace(d.DSN) == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}
