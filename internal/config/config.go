package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	PostgresConn  string
	ServerAddress string
	AdminToken    string
	TickInterval  time.Duration
	MaxClockSkew  time.Duration
	TickWorkers   int
	EventBuffer   int
}

// Load читает конфигурацию из окружения. Если рядом есть .env, его значения
// подставляются только для ещё не заданных переменных.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		PostgresConn:  os.Getenv("POSTGRES_CONN"),
		ServerAddress: getEnv("SERVER_ADDRESS", "0.0.0.0:8080"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
	}

	var err error
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.MaxClockSkew, err = getDuration("MAX_CLOCK_SKEW", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TickWorkers, err = getInt("TICK_WORKERS", 8); err != nil {
		return Config{}, err
	}
	if cfg.EventBuffer, err = getInt("EVENT_BUFFER", 1024); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}
