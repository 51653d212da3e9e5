package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"library-api/config"
	"library-api/gateway"
	"library-api/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatal("config:", err)
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("invalid GATEWAY_UPSTREAM_URL: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var stats *gateway.RedisStats
	if cfg.StatsRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		pingCancel()
		if err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		stats = gateway.NewRedisStats(rdb, cfg.StatsPrefix, cfg.StatsTTL)
	}

	limiters := gateway.NewLimiterStore(cfg.RateRPS, cfg.RateBurst)
	limiters.StartJanitor(ctx)

	h := gateway.NewProxy(upstream, cfg.APIKeyHeader, cfg.APIKey)
	h = gateway.RateLimit(limiters, stats)(h)
	h = middleware.AllowIPs(cfg.AllowedIPs)(h)
	h = gateway.WithHealth(h)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s -> %s", cfg.ListenAddr, upstream)
	log.Printf("rate limit: rps=%.2f burst=%d", cfg.RateRPS, cfg.RateBurst)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
