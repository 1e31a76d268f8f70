package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Weather  WeatherConfig  `yaml:"weather"`
	Plan     PlanConfig     `yaml:"plan"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// WeatherConfig controls the forecast provider and its cache.
type WeatherConfig struct {
	APIBaseURL      string        `yaml:"apiBaseUrl"`
	APIKey          string        `yaml:"apiKey"`
	DefaultLocation string        `yaml:"defaultLocation"`
	CacheTTL        time.Duration `yaml:"cacheTtl"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	Valkey          ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PlanConfig pins the training plan anchor and scheduling knobs.
type PlanConfig struct {
	AnchorDate        string  `yaml:"anchorDate"`
	Timezone          string  `yaml:"timezone"`
	LongRunRestDays   int     `yaml:"longRunRestDays"`
	EasyRunRestDays   int     `yaml:"easyRunRestDays"`
	StreakThresholdKm float64 `yaml:"streakThresholdKm"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("WEATHER_API_BASE_URL"); v != "" {
		cfg.Weather.APIBaseURL = v
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("WEATHER_DEFAULT_LOCATION"); v != "" {
		cfg.Weather.DefaultLocation = v
	}
	if v := os.Getenv("WEATHER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.CacheTTL = parsed
		}
	}
	if v := os.Getenv("WEATHER_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("WEATHER_VALKEY_ENABLED"); v != "" {
		cfg.Weather.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("WEATHER_VALKEY_ADDR"); v != "" {
		cfg.Weather.Valkey.Addr = v
	}
	if v := os.Getenv("PLAN_ANCHOR_DATE"); v != "" {
		cfg.Plan.AnchorDate = v
	}
	if v := os.Getenv("PLAN_TIMEZONE"); v != "" {
		cfg.Plan.Timezone = v
	}
	if v := os.Getenv("PLAN_STREAK_THRESHOLD_KM"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Plan.StreakThresholdKm = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Weather: WeatherConfig{
			APIBaseURL:      "https://api.weatherapi.com/v1",
			DefaultLocation: "Helsinki",
			CacheTTL:        time.Hour,
			RequestTimeout:  10 * time.Second,
		},
		Plan: PlanConfig{
			Timezone:          "UTC",
			LongRunRestDays:   2,
			EasyRunRestDays:   1,
			StreakThresholdKm: 10,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Weather.APIBaseURL == "" {
		return errors.New("weather.apiBaseUrl cannot be empty")
	}
	if c.Weather.DefaultLocation == "" {
		return errors.New("weather.defaultLocation cannot be empty")
	}
	if c.Weather.CacheTTL <= 0 {
		return errors.New("weather.cacheTtl must be positive")
	}
	if c.Weather.RequestTimeout <= 0 {
		return errors.New("weather.requestTimeout must be positive")
	}
	if c.Weather.Valkey.Enabled && strings.TrimSpace(c.Weather.Valkey.Addr) == "" {
		return errors.New("weather.valkey.addr cannot be empty when valkey cache is enabled")
	}
	if c.Plan.AnchorDate != "" {
		if _, err := time.Parse("2006-01-02", c.Plan.AnchorDate); err != nil {
			return fmt.Errorf("plan.anchorDate must be formatted as YYYY-MM-DD: %w", err)
		}
	}
	if c.Plan.Timezone != "" {
		if _, err := time.LoadLocation(c.Plan.Timezone); err != nil {
			return fmt.Errorf("plan.timezone is not a valid IANA name: %w", err)
		}
	}
	if c.Plan.LongRunRestDays < 0 || c.Plan.EasyRunRestDays < 0 {
		return errors.New("plan rest day counts cannot be negative")
	}
	if c.Plan.StreakThresholdKm < 0 {
		return errors.New("plan.streakThresholdKm cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
