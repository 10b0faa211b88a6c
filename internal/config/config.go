package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string

	HTTPPort int

	NewsAPIURL   string
	NewsAPIKey   string
	NewsPollSecs int

	CacheTTLSecs   int
	CacheMaxBytes  int
	CachePrefix    string
	CacheSweepSecs int

	BrokerFillDelayMs int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.HTTPPort = 8080
	if v := strings.TrimSpace(os.Getenv("HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	cfg.NewsAPIURL = strings.TrimSpace(os.Getenv("NEWS_API_URL"))
	if cfg.NewsAPIURL == "" {
		log.Println("Warning: NEWS_API_URL not set, news polling will be disabled")
	}

	cfg.NewsPollSecs = 300
	if v := os.Getenv("NEWS_POLL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NewsPollSecs = n
		}
	}

	cfg.CacheTTLSecs = 300
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSecs = n
		}
	}

	cfg.CacheMaxBytes = 10 * 1024 * 1024
	if v := strings.TrimSpace(os.Getenv("CACHE_MAX_SIZE_BYTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxBytes = n
		}
	}

	cfg.CachePrefix = strings.TrimSpace(os.Getenv("CACHE_PREFIX"))
	if cfg.CachePrefix == "" {
		cfg.CachePrefix = "forex_cache:"
	}

	cfg.CacheSweepSecs = 600
	if v := strings.TrimSpace(os.Getenv("CACHE_SWEEP_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSweepSecs = n
		}
	}

	cfg.BrokerFillDelayMs = 50
	if v := strings.TrimSpace(os.Getenv("BROKER_FILL_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.BrokerFillDelayMs = n
		}
	}

	return cfg
}
