package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the API server configuration.
type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	Workers   int           `env:"DISPATCH_WORKERS, default=8"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dailyskills"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Production reports whether the server runs with production settings.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// ClientConfig is the dailyskills CLI configuration.
type ClientConfig struct {
	APIURL      string        `env:"DAILYSKILLS_API_URL,      default=http://localhost:8080"`
	SessionFile string        `env:"DAILYSKILLS_SESSION_FILE"`
	Timeout     time.Duration `env:"DAILYSKILLS_TIMEOUT,      default=15s"`
	LogLevel    string        `env:"LOG_LEVEL,                default=warn"`
}

// Load reads the server configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the server configuration from l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.JWTSecret) < 16 && cfg.Production() {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters in production")
	}
	return &cfg, nil
}

// LoadClient reads the CLI configuration from environment variables.
func LoadClient(ctx context.Context) (*ClientConfig, error) {
	return LoadClientWith(ctx, envconfig.OsLookuper())
}

// LoadClientWith reads the CLI configuration from l.
func LoadClientWith(ctx context.Context, l envconfig.Lookuper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := process(ctx, l, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func process(ctx context.Context, l envconfig.Lookuper, target any) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: target, Lookuper: l}); err != nil {
		return fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return nil
}
