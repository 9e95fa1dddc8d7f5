// Package config loads the storefront settings from the environment, an
// optional .env file and an optional storefront.yaml.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/midtrans/midtrans-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	AppPort string

	APIBaseURL   string
	APITimeout   time.Duration
	APIRateLimit float64
	APIRateBurst int

	DBDriver    string
	DatabaseDSN string

	RabbitMQURL string

	LogLevel  string
	LogFormat string

	ShippingFlatFee       decimal.Decimal
	FreeShippingThreshold decimal.Decimal

	PaymentEnv           midtrans.EnvironmentType
	PaymentRedirectHosts []string

	SearchDebounce time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("API_BASE_URL", "http://localhost:9000/api")
	v.SetDefault("API_TIMEOUT", "15s")
	v.SetDefault("API_RATE_LIMIT", 10)
	v.SetDefault("API_RATE_BURST", 5)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SHIPPING_FLAT_FEE", "15000")
	v.SetDefault("FREE_SHIPPING_THRESHOLD", "250000")
	v.SetDefault("PAYMENT_ENV", "sandbox")
	v.SetDefault("PAYMENT_REDIRECT_HOSTS", "")
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")
}

// Load reads .env (when present) into the environment, then resolves the
// configuration from the environment and storefront.yaml.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("storefront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read storefront.yaml: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper resolves the configuration from v, with defaults and
// environment overrides applied.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:      v.GetString("APP_PORT"),
		APIBaseURL:   strings.TrimRight(v.GetString("API_BASE_URL"), "/"),
		APITimeout:   v.GetDuration("API_TIMEOUT"),
		APIRateLimit: v.GetFloat64("API_RATE_LIMIT"),
		APIRateBurst: v.GetInt("API_RATE_BURST"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:  v.GetString("DATABASE_DSN"),
		RabbitMQURL:  v.GetString("RABBITMQ_URL"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogFormat:    strings.ToLower(v.GetString("LOG_FORMAT")),

		SearchDebounce: v.GetDuration("SEARCH_DEBOUNCE"),
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API_BASE_URL %q is not an absolute URL", cfg.APIBaseURL)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "postgres" {
		return nil, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", cfg.DBDriver)
	}

	if cfg.ShippingFlatFee, err = money(v, "SHIPPING_FLAT_FEE"); err != nil {
		return nil, err
	}
	if cfg.FreeShippingThreshold, err = money(v, "FREE_SHIPPING_THRESHOLD"); err != nil {
		return nil, err
	}

	switch strings.ToLower(v.GetString("PAYMENT_ENV")) {
	case "sandbox":
		cfg.PaymentEnv = midtrans.Sandbox
	case "production":
		cfg.PaymentEnv = midtrans.Production
	default:
		return nil, fmt.Errorf("PAYMENT_ENV must be sandbox or production, got %q", v.GetString("PAYMENT_ENV"))
	}

	// The API host may host its own payment landing page.
	cfg.PaymentRedirectHosts = append(cfg.PaymentRedirectHosts, u.Host)
	for _, h := range strings.Split(v.GetString("PAYMENT_REDIRECT_HOSTS"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			cfg.PaymentRedirectHosts = append(cfg.PaymentRedirectHosts, h)
		}
	}
	return cfg, nil
}

func money(v *viper.Viper, key string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.GetString(key))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
