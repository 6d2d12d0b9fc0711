package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const EnvDevelopment = "development"

// Config holds all configuration for the service. It is built once in main
// and handed to each component that needs a part of it.
type Config struct {
	Env  string
	Port string
	// AppURL is the public base URL used in emailed links. When empty the
	// request's own scheme and host are used.
	AppURL    string
	Mongo     MongoConfig
	JWT       JWTConfig
	Mail      MailConfig
	Redis     RedisConfig
	NatsURL   string
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// MailConfig selects the outbound mail provider: sendgrid, resend or log.
type MailConfig struct {
	Provider string
	APIKey   string
	Sender   string
}

type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
	APIRate     float64
	APIBurst    int
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:    GetEnvAsString("APP_ENV", EnvDevelopment),
		Port:   GetEnvAsString("PORT", "3000"),
		AppURL: strings.TrimRight(GetEnvAsString("APP_URL", ""), "/"),
		Mongo: MongoConfig{
			URI:      GetEnvAsString("MONGO_URI", ""),
			Database: GetEnvAsString("MONGO_DATABASE", "natours"),
			Timeout:  GetEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret:    GetEnvAsString("JWT_SECRET", ""),
			ExpiresIn: GetEnvAsDuration("JWT_EXPIRES_IN", 90*24*time.Hour),
		},
		Mail: MailConfig{
			Provider: GetEnvAsString("MAIL_PROVIDER", "log"),
			APIKey:   GetEnvAsString("EMAIL_API_KEY", ""),
			Sender:   GetEnvAsString("EMAIL_SENDER", "Natours <no-reply@natours.dev>"),
		},
		Redis: RedisConfig{
			URL:      GetEnvAsString("REDIS_URL", ""),
			Host:     GetEnvAsString("REDIS_HOST", ""),
			Port:     GetEnvAsString("REDIS_PORT", "6379"),
			Password: GetEnvAsString("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
			CacheTTL: GetEnvAsDuration("CACHE_TTL", 10*time.Minute),
		},
		NatsURL: GetEnvAsString("NATS_URL", ""),
		RateLimit: RateLimitConfig{
			Window:      GetEnvAsDuration("RATE_LIMIT_WINDOW", time.Hour),
			MaxRequests: GetEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 5),
			APIRate:     GetEnvAsFloat("API_RATE_LIMIT", 50),
			APIBurst:    GetEnvAsInt("API_RATE_BURST", 100),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGO_URI environment variable is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.AppURL != "" {
		if u, err := url.Parse(c.AppURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("APP_URL must be an absolute URL, got %q", c.AppURL)
		}
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWT.ExpiresIn)
	}
	switch c.Mail.Provider {
	case "sendgrid", "resend":
		if c.Mail.APIKey == "" {
			return fmt.Errorf("EMAIL_API_KEY is required for mail provider %q", c.Mail.Provider)
		}
	case "log":
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}
	return nil
}

// IsDevelopment reports whether error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *RedisConfig) RedisEnabled() bool {
	return c.URL != "" || c.Host != ""
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
