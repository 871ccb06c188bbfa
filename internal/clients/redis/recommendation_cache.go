package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lunchmate/lunchmate-backend/internal/engine"
	"github.com/lunchmate/lunchmate-backend/internal/logger"
)

const (
	keyPrefix     = "recommendation"
	lastGenKey    = "recommendation:last_generated"
	entryTTL      = 48 * time.Hour
	scanBatchSize = 500
)

// RecommendationCache mirrors each published generation into Redis so other
// processes (and operators) can inspect it. The in-memory engine cache stays
// the serving path; this mirror is best effort.
type RecommendationCache interface {
	StoreGeneration(ctx context.Context, generatedFor string, entries map[engine.Key][]engine.RecommendationEntry) error
	LastGenerated(ctx context.Context) (string, error)
	InvalidateUser(ctx context.Context, userID string) (int64, error)
	Close() error
}

type recommendationCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewRecommendationCache(log *logger.Logger) (RecommendationCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &recommendationCache{
		log: log.With("service", "RedisRecommendationCache"),
		rdb: rdb,
	}, nil
}

// StoreGeneration writes one key per (user, date) list plus the generation
// marker. Keys expire on their own, so a full cleanup pass is unnecessary.
func (c *recommendationCache) StoreGeneration(ctx context.Context, generatedFor string, entries map[engine.Key][]engine.RecommendationEntry) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis recommendation cache not initialized")
	}
	pipe := c.rdb.Pipeline()
	for key, list := range entries {
		raw, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("marshal entries for %s/%s: %w", key.UserID, key.Date, err)
		}
		pipe.Set(ctx, entryKey(key.Date, key.UserID.String()), raw, entryTTL)
	}
	pipe.Set(ctx, lastGenKey, generatedFor, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror generation to redis: %w", err)
	}
	c.log.Debug("Mirrored generation to redis", "generated_for", generatedFor, "keys", len(entries))
	return nil
}

func (c *recommendationCache) LastGenerated(ctx context.Context) (string, error) {
	if c == nil || c.rdb == nil {
		return "", fmt.Errorf("redis recommendation cache not initialized")
	}
	val, err := c.rdb.Get(ctx, lastGenKey).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// InvalidateUser drops every mirrored list for one user, e.g. after account
// deletion.
func (c *recommendationCache) InvalidateUser(ctx context.Context, userID string) (int64, error) {
	if c == nil || c.rdb == nil {
		return 0, fmt.Errorf("redis recommendation cache not initialized")
	}
	pattern := fmt.Sprintf("%s:*:user:%s", keyPrefix, userID)
	var deleted int64
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan %q: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *recommendationCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func entryKey(date, userID string) string {
	return fmt.Sprintf("%s:%s:user:%s", keyPrefix, date, userID)
}
