package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// Store selects the persistence backend: "mongo" or "memory".
	Store string `env:"STORE, default=mongo"`

	BodyLimit   string   `env:"BODY_LIMIT,   default=1M"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`

	JWT        JWTConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Admin      AdminConfig
	SMTP       SMTPConfig
	Dispatcher DispatcherConfig
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET, required"`
	ExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=168h"`
	Issuer    string        `env:"JWT_ISSUER,     default=portfolio-api"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=portfolio"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// RateLimitConfig holds per-window request budgets for the public endpoints
// that write.
type RateLimitConfig struct {
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,  default=15m"`
	Login   int           `env:"RATE_LIMIT_LOGIN,   default=5"`
	Like    int           `env:"RATE_LIMIT_LIKE,    default=30"`
	Contact int           `env:"RATE_LIMIT_CONTACT, default=5"`
}

type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME, default=Administrator"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	NotifyTo string `env:"CONTACT_NOTIFY_TO"`
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.NotifyTo != ""
}

type DispatcherConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=2"`
	Buffer  int `env:"NOTIFY_BUFFER,  default=64"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Store != "mongo" && cfg.Store != "memory" {
		return nil, fmt.Errorf("config: STORE must be mongo or memory, got %q", cfg.Store)
	}
	return &cfg, nil
}
