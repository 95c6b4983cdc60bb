// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingBaseURL = errors.New("config: DOSEWATCH_API_URL is required")

type Config struct {
	APIBaseURL           string
	APIToken             string
	CachePath            string
	LogPath              string
	DesktopNotifications bool
	SchedulerBuffer      int
}

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		CachePath:            filepath.Join(home, ".dosewatch", "cache.db"),
		LogPath:              filepath.Join(home, ".dosewatch", "dosewatch.log"),
		DesktopNotifications: false,
		SchedulerBuffer:      64,
	}
}

// Load reads .env (if present) and the DOSEWATCH_* environment variables on
// top of the defaults. A missing .env file is not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("DOSEWATCH_API_URL")); v != "" {
		cfg.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("DOSEWATCH_API_TOKEN")); v != "" {
		cfg.APIToken = v
	}
	if v := strings.TrimSpace(os.Getenv("DOSEWATCH_CACHE_PATH")); v != "" {
		cfg.CachePath = v
	}
	if v := strings.TrimSpace(os.Getenv("DOSEWATCH_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v, ok := getEnvBool("DOSEWATCH_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("DOSEWATCH_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}

	if cfg.APIBaseURL == "" {
		return cfg, ErrMissingBaseURL
	}
	return cfg, nil
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
