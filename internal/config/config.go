// Package config loads the storefront's settings from config.yaml and
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/urbandrives/storefront/internal/platform/cache"
	"github.com/urbandrives/storefront/internal/platform/database"
)

// Token modes select how the backend client obtains bearer tokens.
const (
	TokenModeHTTP  = "http"
	TokenModeLocal = "local"
)

// BackendConfig describes the backend of record.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TokenConfig controls bearer token acquisition.
type TokenConfig struct {
	BaseURL      string
	Mode         string
	CacheEnabled bool
	CacheMargin  time.Duration
}

// JWTConfig configures the tokens minted by the token endpoint.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// KafkaConfig lists brokers and the consumer group.
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// StripeConfig configures hosted checkout.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// RateLimitConfig throttles credential endpoints per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// ServiceConfig holds all configuration for the storefront.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	MigrationsDir string
	DBConfig      database.PostgresConfig
	RedisConfig   cache.Config
	KafkaConfig   KafkaConfig
	JWTConfig     JWTConfig
	SessionTTL    time.Duration
	Backend       BackendConfig
	Token         TokenConfig
	Stripe        StripeConfig
	CORSOrigins   []string
	RateLimit     RateLimitConfig
	AdminEmails   []string
}

// IsProduction reports whether the service runs in production.
func (c *ServiceConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads configuration from an optional config.yaml and the environment.
// Environment variables use the STOREFRONT prefix with dots replaced by
// underscores, e.g. STOREFRONT_BACKEND_BASE_URL.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("migrations.dir", "migrations")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "storefront")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_id", "storefront")

	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.issuer", "urbandrives-storefront")
	v.SetDefault("jwt.ttl", "15m")
	v.SetDefault("session.ttl", "168h")

	v.SetDefault("backend.base_url", "http://localhost:8081")
	v.SetDefault("backend.timeout", "10s")

	v.SetDefault("token.base_url", "http://localhost:8080/api")
	v.SetDefault("token.mode", TokenModeHTTP)
	v.SetDefault("token.cache_enabled", false)
	v.SetDefault("token.cache_margin", "30s")

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.success_url", "http://localhost:3000/booking-success")
	v.SetDefault("stripe.cancel_url", "http://localhost:3000/booking")
	v.SetDefault("stripe.currency", "usd")

	v.SetDefault("cors.origins", "http://localhost:3000,https://urbandrives.vercel.app")
	v.SetDefault("ratelimit.rps", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("admin.emails", "")
}

func fromViper(v *viper.Viper) *ServiceConfig {
	return &ServiceConfig{
		Port:          v.GetString("service.port"),
		AppEnv:        v.GetString("app.env"),
		MigrationsDir: v.GetString("migrations.dir"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		RedisConfig: cache.Config{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(v.GetString("kafka.brokers")),
			GroupID: v.GetString("kafka.group_id"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		SessionTTL: v.GetDuration("session.ttl"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("backend.base_url"), "/"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Token: TokenConfig{
			BaseURL:      strings.TrimRight(v.GetString("token.base_url"), "/"),
			Mode:         strings.ToLower(v.GetString("token.mode")),
			CacheEnabled: v.GetBool("token.cache_enabled"),
			CacheMargin:  v.GetDuration("token.cache_margin"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			SuccessURL:    v.GetString("stripe.success_url"),
			CancelURL:     v.GetString("stripe.cancel_url"),
			Currency:      v.GetString("stripe.currency"),
		},
		CORSOrigins: splitList(v.GetString("cors.origins")),
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("ratelimit.rps"),
			Burst: v.GetInt("ratelimit.burst"),
		},
		AdminEmails: splitList(v.GetString("admin.emails")),
	}
}

func (c *ServiceConfig) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	switch c.Token.Mode {
	case TokenModeHTTP, TokenModeLocal:
	default:
		return fmt.Errorf("token.mode must be %q or %q, got %q", TokenModeHTTP, TokenModeLocal, c.Token.Mode)
	}
	if c.IsProduction() && c.JWTConfig.Secret == "dev-secret-change-me" {
		return errors.New("jwt.secret must be set in production")
	}
	return nil
}

// splitList parses a comma separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
