package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/veracare/marketplace-api/pkg/validator"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Store     StoreConfig     `mapstructure:"store"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BaseURL      string        `mapstructure:"base_url" envconfig:"BASE_URL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST" validate:"required"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"REDIS_URL" validate:"required"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret" envconfig:"JWT_SECRET" validate:"required,min=32"`
	RefreshSecret      string `mapstructure:"refresh_secret" envconfig:"JWT_REFRESH_SECRET" validate:"required,min=32"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	RefreshExpiryHours int    `mapstructure:"refresh_expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// PaymentConfig points at the external payment session provider.
type PaymentConfig struct {
	SessionURL string        `mapstructure:"session_url" envconfig:"PAYMENT_SESSION_URL"`
	APIKey     string        `mapstructure:"api_key" envconfig:"PAYMENT_API_KEY"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SuccessURL string        `mapstructure:"success_url"`
	CancelURL  string        `mapstructure:"cancel_url"`
}

// StoreConfig holds the cart arithmetic constants.
type StoreConfig struct {
	FreeShippingCents int           `mapstructure:"free_shipping_cents"`
	FlatShippingCents int           `mapstructure:"flat_shipping_cents"`
	TaxRate           float64       `mapstructure:"tax_rate" validate:"gte=0,lt=1"`
	PromoCode         string        `mapstructure:"promo_code"`
	PromoPercent      int           `mapstructure:"promo_percent" validate:"gte=0,lte=100"`
	CartTTL           time.Duration `mapstructure:"cart_ttl"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment variables override file values.
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}

	applyDefaults(&config)
	if err := validator.Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.FreeShippingCents == 0 {
		cfg.Store.FreeShippingCents = 5000
	}
	if cfg.Store.FlatShippingCents == 0 {
		cfg.Store.FlatShippingCents = 599
	}
	if cfg.Store.TaxRate == 0 {
		cfg.Store.TaxRate = 0.08
	}
	if cfg.Store.PromoCode == "" {
		cfg.Store.PromoCode = "HEALING10"
	}
	if cfg.Store.PromoPercent == 0 {
		cfg.Store.PromoPercent = 10
	}
	if cfg.Store.CartTTL == 0 {
		cfg.Store.CartTTL = 7 * 24 * time.Hour
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 5 * time.Second
	}
	if cfg.Outbox.RetryAttempts == 0 {
		cfg.Outbox.RetryAttempts = 3
	}
	if cfg.Outbox.RetryDelay == 0 {
		cfg.Outbox.RetryDelay = 5 * time.Second
	}
	if cfg.Outbox.Retention == 0 {
		cfg.Outbox.Retention = 30 * 24 * time.Hour
	}
	if cfg.Outbox.PruneInterval == 0 {
		cfg.Outbox.PruneInterval = time.Hour
	}
}
