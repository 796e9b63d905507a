package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Mail  MailConfig
}

type AuthConfig struct {
	JWTSecret                string        `env:"JWT_SECRET, required"`
	JWTIssuer                string        `env:"JWT_ISSUER, default=pos-backoffice"`
	TokenTTL                 time.Duration `env:"TOKEN_TTL, default=720h"`
	RequireEmailVerification bool          `env:"REQUIRE_EMAIL_VERIFICATION, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=pos_backoffice"`
}

type RedisConfig struct {
	Addr            string        `env:"REDIS_ADDR, default=localhost:6379"`
	Password        string        `env:"REDIS_PASSWORD"`
	DB              int           `env:"REDIS_DB,   default=0"`
	SubscriptionTTL time.Duration `env:"SUBSCRIPTION_CACHE_TTL, default=5m"`
}

// MailConfig configures outgoing email. Verification links point at the
// dashboard's /verify-email page, which calls the API with the token.
type MailConfig struct {
	DashboardURL string `env:"FRONTEND_URL,  default=http://localhost:5173"`
	Host         string `env:"SMTP_HOST"`
	Port         int    `env:"SMTP_PORT,     default=587"`
	Username     string `env:"SMTP_USER"`
	Password     string `env:"SMTP_PASSWORD"`
	From         string `env:"SMTP_FROM,     default=no-reply@possuite.local"`
	Workers      int    `env:"MAIL_WORKERS,  default=2"`
}

// Production reports whether the service runs with production defaults.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters")
	}
	if cfg.Mail.Workers < 1 {
		cfg.Mail.Workers = 1
	}
	return &cfg, nil
}
