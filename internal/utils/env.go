package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

// SafeEnv returns the environment variable value for key, or fallback if empty.
func SafeEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// SafeEnvInt parses key as an integer. Unparsable values are logged and
// replaced by fallback.
func SafeEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("env %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// SafeEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func SafeEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("env %s=%q is not a duration, using %s", key, v, fallback)
	return fallback
}
