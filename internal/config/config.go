package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

type Config struct {
	Port        int
	DatabaseURL string // empty means in-memory storage; sqlite://<path> opens a file
	LogLevel    string
	LogFormat   string
	FeedOrigins []string
	DefaultSort engine.SortMode
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load reads env files (".env" when none are given; a missing file is fine)
// and then the environment. Variables already set win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:        8080,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("PORT %q: not a valid port", v)
		}
		cfg.Port = port
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("LOG_FORMAT %q: want json or console", cfg.LogFormat)
	}

	for _, o := range strings.Split(os.Getenv("FEED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.FeedOrigins = append(cfg.FeedOrigins, o)
		}
	}

	sort, err := engine.ParseSortMode(os.Getenv("DEFAULT_SORT"))
	if err != nil {
		return Config{}, fmt.Errorf("DEFAULT_SORT: %w", err)
	}
	cfg.DefaultSort = sort

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
