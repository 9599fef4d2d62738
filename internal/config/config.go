package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN           string `env:"DATABASE_DSN,required=true"`
	RedisURL              string `env:"REDIS_URL,required=true"`
	FeedAPIKey            string `env:"FEED_API_KEY"`
	PollIntervalSec       int    `env:"POLL_INTERVAL_SEC,default=120"`
	FetchTimeoutSec       int    `env:"FETCH_TIMEOUT_SEC,default=30"`
	WorkerConcurrency     int    `env:"WORKER_CONCURRENCY,default=4"`
	FetchRateLimitPerSec  int    `env:"FETCH_RATE_LIMIT_PER_SEC,default=10"`
	OutagePollIntervalSec int    `env:"OUTAGE_POLL_INTERVAL_SEC,default=900"`
	HTTPPort              int    `env:"HTTP_PORT,default=8080"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	// Load .env into the environment when present; real env wins.
	_ = godotenv.Load()

	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func (c *Config) OutagePollInterval() time.Duration {
	return time.Duration(c.OutagePollIntervalSec) * time.Second
}
