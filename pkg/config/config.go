package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
)

var envLog = logger.New("config")

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			envLog.Warn("invalid environment value", map[string]any{"key": key, "error": err.Error()})
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			envLog.Warn("invalid environment value", map[string]any{"key": key, "error": err.Error()})
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetDuration retrieves an environment variable as seconds or returns fallback.
func GetDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			envLog.Warn("invalid environment value", map[string]any{"key": key, "error": err.Error()})
			return fallback
		}
		return time.Duration(parsed) * time.Second
	}
	return fallback
}
