package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "rectangle-service/internal/domain/rectangle"
)

// RectangleCache defines the interface for saved rectangle caching operations.
type RectangleCache interface {
	// Get retrieves a record from cache by ID.
	// Returns nil, nil on a cache miss.
	Get(ctx context.Context, id int64) (*domain.Record, error)

	// Set stores a record in cache with the configured TTL.
	Set(ctx context.Context, rec *domain.Record) error

	// Delete removes records from cache by ID.
	Delete(ctx context.Context, ids ...int64) error
}

// RedisRectangleCache implements RectangleCache using Redis as the backing store.
type RedisRectangleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisRectangleCache creates a new Redis-backed rectangle cache.
func NewRedisRectangleCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisRectangleCache {
	return &RedisRectangleCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// CacheKey returns the Redis key holding the record with the given ID.
func CacheKey(id int64) string {
	return fmt.Sprintf("rectangle:%d", id)
}

// cachedRecord is the JSON form stored in Redis.
type cachedRecord struct {
	ID        int64     `json:"id"`
	Label     string    `json:"label"`
	Width     uint32    `json:"width"`
	Height    uint32    `json:"height"`
	CreatedAt time.Time `json:"created_at"`
}

// Get retrieves a record from Redis.
func (c *RedisRectangleCache) Get(ctx context.Context, id int64) (*domain.Record, error) {
	data, err := c.client.Get(ctx, CacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("rectangle_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("rectangle_id", id), zap.Error(err))
		return nil, err
	}

	var cr cachedRecord
	if err := json.Unmarshal(data, &cr); err != nil {
		c.log.Error("failed to unmarshal cached rectangle", zap.Int64("rectangle_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("rectangle_id", id))
	return &domain.Record{
		ID:        cr.ID,
		Label:     cr.Label,
		Rectangle: domain.New(cr.Width, cr.Height),
		CreatedAt: cr.CreatedAt,
	}, nil
}

// Set stores a record in Redis with TTL.
func (c *RedisRectangleCache) Set(ctx context.Context, rec *domain.Record) error {
	if rec == nil {
		return errors.New("cannot cache nil rectangle")
	}

	data, err := json.Marshal(cachedRecord{
		ID:        rec.ID,
		Label:     rec.Label,
		Width:     rec.Rectangle.Width,
		Height:    rec.Rectangle.Height,
		CreatedAt: rec.CreatedAt,
	})
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, CacheKey(rec.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("rectangle_id", rec.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached rectangle", zap.Int64("rectangle_id", rec.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete removes records from Redis.
func (c *RedisRectangleCache) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CacheKey(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.Int("count", len(ids)), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.Int("count", len(ids)))
	return nil
}
