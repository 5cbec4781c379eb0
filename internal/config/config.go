package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"OP_SHUFFLE_DB" envDefault:"op_shuffle.db?_journal_mode=WAL&_foreign_keys=on"`
	Addr        string `env:"OP_SHUFFLE_ADDR" envDefault:":8080"`
	LogLevel    string `env:"OP_SHUFFLE_LOG_LEVEL" envDefault:"INFO"`
	LogFormat   string `env:"OP_SHUFFLE_LOG_FORMAT" envDefault:"json"`
	// Zero seeds the shuffler randomly.
	Seed uint64 `env:"OP_SHUFFLE_SEED" envDefault:"0"`
}

// Load reads .env files when present, then the environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR to a slog level. Unknown strings are
// treated as INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the config.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(c.LogLevel)}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
