// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"campus/internal/middleware"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	DBMaxOpenConns           int  `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int  `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int  `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBAutoMigrate            bool `mapstructure:"DB_AUTO_MIGRATE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	// RateLimitPerMinute bounds create requests per caller; 0 disables the limiter.
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	ReconcileSchedule  string `mapstructure:"RECONCILE_SCHEDULE"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

var defaults = map[string]any{
	"PORT":                         "8080",
	"APP_ENV":                      "development",
	"SERVICE_NAME":                 "campus-api",
	"ALLOWED_ORIGINS":              "http://localhost:5173,http://localhost:3000",
	"JWT_SECRET":                   "",
	"DB_HOST":                      "localhost",
	"DB_PORT":                      "5432",
	"DB_USER":                      "campus",
	"DB_PASSWORD":                  "password",
	"DB_NAME":                      "campus",
	"DB_SSLMODE":                   "disable",
	"DB_MAX_OPEN_CONNS":            25,
	"DB_MAX_IDLE_CONNS":            5,
	"DB_CONN_MAX_LIFETIME_MINUTES": 5,
	"DB_AUTO_MIGRATE":              true,
	"REDIS_URL":                    "localhost:6379",
	"RATE_LIMIT_PER_MINUTE":        30,
	"RECONCILE_SCHEDULE":           "@every 30m",
	"TRACING_ENABLED":              false,
	"TRACING_EXPORTER":             "stdout",
	"TRACING_OTLP_ENDPOINT":        "localhost:4318",
	"TRACING_SAMPLER_RATIO":        1.0,
}

// LoadConfig loads configuration from config.yml, an optional config.<env>.yml
// profile and the environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// the base file is optional
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		middleware.Logger.Info("loaded profile-specific configuration", "file", "config."+env+".yml")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// DSN renders the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		return errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if c.DBConnMaxLifetimeMinutes < 1 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must be at least 1")
	}
	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable TLS in production")
		}
		if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			middleware.Logger.Warn("ALLOWED_ORIGINS is set to '*' in production")
		}
	}

	return nil
}
