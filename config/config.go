package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port         string
	DatabaseURL  string
	AuthEnabled  bool
	APIKeyHeader string
	APIKeys      map[string]string // key -> role
}

func Load() (*Config, error) {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AuthEnabled:  getEnvBool("AUTH_ENABLED", true),
		APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-KEY"),
		APIKeys:      parseAPIKeys(getEnv("API_KEYS", defaultAPIKeys)),
	}, nil
}

// defaultAPIKeys are development credentials only. Override API_KEYS in any
// real deployment.
const defaultAPIKeys = "admin-api-key-123:ADMIN," +
	"books-api-key-456:BOOKS," +
	"authors-api-key-789:AUTHORS," +
	"borrowed-books-api-key-101:BORROWED_BOOKS"

// parseAPIKeys reads "key:ROLE,key:ROLE" pairs. Malformed entries are
// skipped rather than fatal so a trailing comma cannot take the server down.
func parseAPIKeys(raw string) map[string]string {
	keys := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, role, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || key == "" || role == "" {
			continue
		}
		keys[key] = strings.ToUpper(strings.TrimSpace(role))
	}
	return keys
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
