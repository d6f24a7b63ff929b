// Package config loads application configuration from an optional YAML
// file overlaid by environment variables. Env always wins, so deploys
// can override a checked-in config file without editing it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Orders   OrdersConfig   `yaml:"orders"`
	Events   EventsConfig   `yaml:"events"`
}

// HTTPConfig contains the API and metrics listener settings.
type HTTPConfig struct {
	Address        string `yaml:"address"`
	MetricsAddress string `yaml:"metrics_address"`
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database file path
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// OrdersConfig tunes order creation and statistics.
type OrdersConfig struct {
	TaxRate        float64 `yaml:"tax_rate"`         // fraction of the subtotal, e.g. 0.08
	DailyStatsDays int     `yaml:"daily_stats_days"` // trailing window for daily stats
}

// EventsConfig configures the optional AMQP order event stream. An
// empty URL disables publishing.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url"`
	Exchange string `yaml:"exchange"`
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist), applies env overrides and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTP:     HTTPConfig{Address: ":8080", MetricsAddress: ":9090"},
		Database: DatabaseConfig{Path: "marketplace.db"},
		Orders:   OrdersConfig{TaxRate: 0.08, DailyStatsDays: 7},
		Events:   EventsConfig{Exchange: "orders_topic"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.HTTP.Address = getEnv("HTTP_ADDRESS", cfg.HTTP.Address)
	cfg.HTTP.MetricsAddress = getEnv("METRICS_ADDRESS", cfg.HTTP.MetricsAddress)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Events.AMQPURL = getEnv("AMQP_URL", cfg.Events.AMQPURL)
	cfg.Events.Exchange = getEnv("AMQP_EXCHANGE", cfg.Events.Exchange)

	var err error
	if cfg.Orders.TaxRate, err = getEnvFloat("TAX_RATE", cfg.Orders.TaxRate); err != nil {
		return nil, err
	}
	if cfg.Orders.DailyStatsDays, err = getEnvInt("DAILY_STATS_DAYS", cfg.Orders.DailyStatsDays); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set; required for production")
	}
	if cfg.Orders.TaxRate < 0 || cfg.Orders.TaxRate >= 1 {
		return nil, fmt.Errorf("tax rate %v out of range [0, 1)", cfg.Orders.TaxRate)
	}
	if cfg.Orders.DailyStatsDays <= 0 {
		return nil, fmt.Errorf("daily stats window must be positive")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but substitutes a development JWT
// secret when none is configured. Never use in production.
func LoadWithDefaults(path string) (*Config, error) {
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "dev-secret-change-me")
	}
	return Load(path)
}

// String returns a printable form with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, Metrics: %s, DB: %s, Auth: *** (masked) ***}",
		c.HTTP.Address, c.HTTP.MetricsAddress, c.Database.Path)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %w", key, err)
		}
		return f, nil
	}
	return defaultVal, nil
}
