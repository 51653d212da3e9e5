package config

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// GatewayConfig drives the edge proxy in front of the API.
type GatewayConfig struct {
	ListenAddr   string
	UpstreamURL  string
	APIKey       string // injected on every forwarded request
	APIKeyHeader string
	AllowedIPs   []string

	RateRPS   float64
	RateBurst int

	StatsRedisAddr     string
	StatsRedisPassword string
	StatsRedisDB       int
	StatsPrefix        string
	StatsTTL           time.Duration
}

func LoadGateway() (*GatewayConfig, error) {
	cfg := &GatewayConfig{
		ListenAddr:   getEnv("GATEWAY_LISTEN_ADDR", ":8090"),
		UpstreamURL:  getEnv("GATEWAY_UPSTREAM_URL", "http://localhost:8080"),
		APIKey:       getEnv("GATEWAY_API_KEY", ""),
		APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-KEY"),
		AllowedIPs:   splitList(getEnv("GATEWAY_ALLOWED_IPS", "")),

		RateRPS:   getEnvFloat("GATEWAY_RATE_RPS", 10),
		RateBurst: getEnvInt("GATEWAY_RATE_BURST", 20),

		StatsRedisAddr:     getEnv("GATEWAY_STATS_REDIS_ADDR", ""),
		StatsRedisPassword: getEnv("GATEWAY_STATS_REDIS_PASSWORD", ""),
		StatsRedisDB:       getEnvInt("GATEWAY_STATS_REDIS_DB", 0),
		StatsPrefix:        getEnv("GATEWAY_STATS_PREFIX", "gateway:stats"),
		StatsTTL:           getEnvDuration("GATEWAY_STATS_TTL", 24*time.Hour),
	}
	if cfg.RateRPS <= 0 {
		return nil, errors.New("GATEWAY_RATE_RPS must be > 0")
	}
	if cfg.RateBurst <= 0 {
		return nil, errors.New("GATEWAY_RATE_BURST must be > 0")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
