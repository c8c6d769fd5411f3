package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string
	// CORSAllowedHosts are extra dashboard hosts allowed to call the API.
	CORSAllowedHosts []string

	Bitrefill BitrefillConfig
	Proxy     ProxyConfig
	Refresh   RefreshConfig
	Redis     RedisConfig
}

// BitrefillConfig selects the upstream market.
type BitrefillConfig struct {
	BaseURL  string
	Country  string
	Currency string
}

// ProxyConfig controls the resilient fetcher.
type ProxyConfig struct {
	Strategies []string
	Timeout    time.Duration
}

// RefreshConfig controls refresh cycles.
type RefreshConfig struct {
	Interval          time.Duration // 0 disables the periodic worker
	DetailConcurrency int           // 0 fetches every detail at once
}

// RedisConfig contains Redis connection parameters. Redis is optional; an
// empty Host disables snapshot fan-out.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.CORSAllowedHosts = splitList(getEnv("CORS_ALLOWED_HOSTS", ""))

	// Bitrefill
	cfg.Bitrefill = BitrefillConfig{
		BaseURL:  getEnv("BITREFILL_BASE_URL", "https://www.bitrefill.com/api"),
		Country:  strings.ToUpper(getEnv("BITREFILL_COUNTRY", "IN")),
		Currency: strings.ToUpper(getEnv("BITREFILL_CURRENCY", "INR")),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Channel:  getEnv("REDIS_CHANNEL", "giftcards:snapshots"),
	}

	// Proxy
	cfg.Proxy.Strategies = splitList(getEnv("PROXY_STRATEGIES", "corsproxy,allorigins"))
	if len(cfg.Proxy.Strategies) == 0 {
		return nil, errors.New("PROXY_STRATEGIES must name at least one strategy")
	}

	var err error
	if cfg.Proxy.Timeout, err = parseDurationEnv("PROXY_TIMEOUT", "12s"); err != nil {
		return nil, fmt.Errorf("invalid PROXY_TIMEOUT: %w", err)
	}
	if cfg.Proxy.Timeout == 0 {
		return nil, errors.New("PROXY_TIMEOUT must be > 0")
	}

	// Refresh
	if cfg.Refresh.Interval, err = parseDurationEnv("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.Refresh.DetailConcurrency = getEnvInt("DETAIL_CONCURRENCY", 0)
	if cfg.Refresh.DetailConcurrency < 0 {
		return nil, errors.New("DETAIL_CONCURRENCY must be >= 0")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
