// Package utils holds small environment helpers shared by config and the
// command line tools.
package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the variable's value, or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if value, ok := lookup(key); ok {
		return value
	}
	return fallback
}

// GetEnvInt parses the variable as a base-10 int. Malformed values yield fallback.
func GetEnvInt(key string, fallback int) int {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvInt64 is GetEnvInt for byte sizes and other 64-bit quantities.
func GetEnvInt64(key string, fallback int64) int64 {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvBool accepts the forms understood by strconv.ParseBool
// (1, t, true, 0, f, false, ...).
func GetEnvBool(key string, fallback bool) bool {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvDuration parses values such as "250ms" or "1m30s". The fallback is
// itself a duration string so defaults read the same as the env files.
func GetEnvDuration(key, fallback string) time.Duration {
	if value, ok := lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// GetEnvFloat64 parses the variable as a float64.
func GetEnvFloat64(key string, fallback float64) float64 {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// GetEnvList splits a comma separated variable, dropping blank items.
func GetEnvList(key string, fallback []string) []string {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}
