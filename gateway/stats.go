package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsEvent is one gateway decision worth counting.
type StatsEvent struct {
	Key     string
	Method  string
	Path    string
	Allowed bool
}

// RedisStats counts allowed and denied requests in Redis hashes: a
// cumulative total plus per-minute buckets that expire after the TTL.
// A nil receiver records nothing, so the gateway runs fine without Redis.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStats(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStats {
	return &RedisStats{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStats) Record(ctx context.Context, ev StatsEvent) {
	if s == nil || s.rdb == nil {
		return
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, time.Now().UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	if ev.Method != "" && ev.Path != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", ev.Method+" "+ev.Path+":"+field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("stats record error: %v", err)
	}
}
