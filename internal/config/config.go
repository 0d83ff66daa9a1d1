package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBDir            string        `env:"DB_DIR" envDefault:"data"`
	Sessions         []string      `env:"SESSIONS" envDefault:"main" envSeparator:","`
	SeedFile         string        `env:"SEED_FILE"`
	LogLevel         slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	SSEKeepAlive     time.Duration `env:"SSE_KEEPALIVE" envDefault:"15s"`
	SubscriberBuffer int           `env:"SUBSCRIBER_BUFFER" envDefault:"64"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads the environment, after applying an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if len(cfg.Sessions) == 0 {
		return nil, errors.New("SESSIONS must name at least one session")
	}
	if cfg.SSEKeepAlive <= 0 {
		return nil, fmt.Errorf("SSE_KEEPALIVE must be positive, got %s", cfg.SSEKeepAlive)
	}
	return &cfg, nil
}
