// Package cache keeps rendered calendar views in Redis, zstd-compressed.
// Writes to the agenda bump a generation counter so stale views are never read,
// including views whose query was in flight when the counter moved.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"agendaapi/internal/config"
	"agendaapi/internal/model"
)

// ViewCache stores calendar view results by key.
//
// Get reports the generation it looked at; Set only stores under that
// generation, so a view computed before an Invalidate is never served after it.
type ViewCache interface {
	Get(ctx context.Context, key string) (events []model.AgendaEvent, gen int64, ok bool)
	Set(ctx context.Context, gen int64, key string, events []model.AgendaEvent)
	Invalidate(ctx context.Context) error
}

// NoGeneration is returned by Get when the generation could not be read.
// Set ignores it.
const NoGeneration int64 = -1

// client is the subset of *redis.Client the cache relies on.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisCache implements ViewCache on Redis.
type RedisCache struct {
	rdb    client
	prefix string
	ttl    time.Duration
	enc    *zstd.Encoder
	dec    *zstd.Decoder
	logger *zap.Logger
}

var _ ViewCache = (*RedisCache)(nil)

// NewRedisClient connects to Redis and pings it with a short timeout.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisCache wraps a Redis client. A non-positive ttl falls back to 30s.
func NewRedisCache(rdb client, prefix string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl, enc: enc, dec: dec, logger: logger}, nil
}

func (c *RedisCache) genKey() string { return c.prefix + ":gen" }

func (c *RedisCache) viewKey(gen int64, key string) string {
	return fmt.Sprintf("%s:view:%d:%s", c.prefix, gen, key)
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the cached view, treating every failure as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]model.AgendaEvent, int64, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("cache_generation_failed", zap.Error(err))
		return nil, NoGeneration, false
	}

	raw, err := c.rdb.Get(ctx, c.viewKey(gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache_get_failed", zap.String("key", key), zap.Error(err))
		}
		return nil, gen, false
	}

	plain, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		c.logger.Warn("cache_decode_failed", zap.String("key", key), zap.Error(err))
		return nil, gen, false
	}
	var events []model.AgendaEvent
	if err := json.Unmarshal(plain, &events); err != nil {
		c.logger.Warn("cache_decode_failed", zap.String("key", key), zap.Error(err))
		return nil, gen, false
	}
	return events, gen, true
}

// Set stores the view under gen, the generation its Get observed. A view
// whose generation was bumped meanwhile lands under a key no Get reads again.
func (c *RedisCache) Set(ctx context.Context, gen int64, key string, events []model.AgendaEvent) {
	if gen == NoGeneration {
		return
	}
	plain, err := json.Marshal(events)
	if err != nil {
		return
	}
	payload := c.enc.EncodeAll(plain, make([]byte, 0, len(plain)/2))
	if err := c.rdb.Set(ctx, c.viewKey(gen, key), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate moves to a new generation; old views expire on their own.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

// NopCache never stores anything. Used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]model.AgendaEvent, int64, bool) {
	return nil, NoGeneration, false
}

func (NopCache) Set(context.Context, int64, string, []model.AgendaEvent) {}

func (NopCache) Invalidate(context.Context) error { return nil }
