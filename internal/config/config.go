package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

const minJWTSecretLength = 16

type Config struct {
	DatabaseDSN            string `env:"DATABASE_DSN,required=true"`
	RedisURL               string `env:"REDIS_URL,required=true"`
	JWTSecret              string `env:"JWT_SECRET,required=true"`
	AdminUsername          string `env:"ADMIN_USERNAME,required=true"`
	AdminPasswordHash      string `env:"ADMIN_PASSWORD_HASH,required=true"`
	APIPort                int    `env:"API_PORT,default=8080"`
	LogLevel               string `env:"LOG_LEVEL,default=info"`
	StatsCacheTTLSeconds   int    `env:"STATS_CACHE_TTL_SECONDS,default=30"`
	LoginRateLimitPerSec   int    `env:"LOGIN_RATE_LIMIT_PER_SEC,default=5"`
	ShutdownTimeoutSeconds int    `env:"SHUTDOWN_TIMEOUT_SECONDS,default=10"`
	CookieSecure           bool   `env:"COOKIE_SECURE,default=false"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// StatsCacheTTL is zero when caching is disabled.
func (c *Config) StatsCacheTTL() time.Duration {
	if c.StatsCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	if len(strings.TrimSpace(c.JWTSecret)) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if strings.TrimSpace(c.AdminUsername) == "" {
		return fmt.Errorf("ADMIN_USERNAME must not be blank")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}
	if c.LoginRateLimitPerSec <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_PER_SEC must be positive, got %d", c.LoginRateLimitPerSec)
	}
	if c.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT_SECONDS must be positive, got %d", c.ShutdownTimeoutSeconds)
	}
	return nil
}
