package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rectangle-service/internal/adapter/cache"
	"rectangle-service/internal/config"
	"rectangle-service/internal/usecase/rectangle"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App: config.AppConfig{GRPCPort: "0", HTTPPort: "0", ShutdownTimeoutSeconds: 1},
		DB: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			SQLitePath:   filepath.Join(t.TempDir(), "rectangles.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 10, BurstCapacity: 20, WindowSeconds: 1},
		Logger:    config.LoggerConfig{Level: "info", SlowQuerySeconds: 0.2},
	}
}

func TestNewContainer_WithoutRedis(t *testing.T) {
	c, err := NewContainer(testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.Redis())
	assert.NotNil(t, c.GinHandler)
	assert.NotNil(t, c.RateLimiter)

	ctx := context.Background()
	created, err := c.RectangleUC.CreateRectangle(ctx, rectangle.CreateRectangleRequest{Width: 10, Height: 5})
	require.NoError(t, err)

	got, err := c.RectangleUC.GetRectangle(ctx, rectangle.GetRectangleRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, uint32(50), got.Area)
}

func TestNewContainer_WithRedisCachesReads(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port(), PoolSize: 2, CacheTTL: 60}

	c, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Redis())

	ctx := context.Background()
	created, err := c.RectangleUC.CreateRectangle(ctx, rectangle.CreateRectangleRequest{Label: "cached", Width: 2, Height: 3})
	require.NoError(t, err)

	_, err = c.RectangleUC.GetRectangle(ctx, rectangle.GetRectangleRequest{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.CacheKey(created.ID)))

	_, err = c.RectangleUC.DeleteRectangle(ctx, rectangle.DeleteRectangleRequest{ID: created.ID})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.CacheKey(created.ID)))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "oracle"

	_, err := NewContainer(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
