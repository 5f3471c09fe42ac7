package di

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rectangle-service/cmd/api/infrastructure"
	"rectangle-service/internal/adapter/cache"
	"rectangle-service/internal/adapter/db/gormstore"
	ginhandler "rectangle-service/internal/adapter/gin/handler"
	ginmiddleware "rectangle-service/internal/adapter/gin/middleware"
	"rectangle-service/internal/adapter/grpc/middleware"
	"rectangle-service/internal/adapter/repository/cached"
	"rectangle-service/internal/config"
	"rectangle-service/internal/usecase/rectangle"
	redisclient "rectangle-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	DB            *gorm.DB
	RedisClient   *redisclient.Client // nil when Redis is disabled
	RectangleUC   rectangle.Usecase
	RateLimiter   *middleware.RateLimiter
	HTTPRateLimit ginmiddleware.TokenBucketConfig
	GinHandler    *ginhandler.RectangleHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	var repo rectangle.Repository = gormstore.NewRectangleRepo(db, l)
	if rdb != nil {
		rectangleCache := cache.NewRedisRectangleCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewRectangleRepository(repo, rectangleCache, l)
	}

	rectangleUC := rectangle.New(repo, l)

	rateLimiter := middleware.NewRateLimiter(
		redisOrNil(rdb),
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			WindowSeconds:     cfg.RateLimit.WindowSeconds,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		RectangleUC: rectangleUC,
		RateLimiter: rateLimiter,
		HTTPRateLimit: ginmiddleware.TokenBucketConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		GinHandler: ginhandler.NewRectangleHandler(rectangleUC, l),
	}, nil
}

// Redis returns the underlying go-redis client, or nil when Redis is disabled.
func (c *Container) Redis() *goredis.Client {
	return redisOrNil(c.RedisClient)
}

func redisOrNil(rdb *redisclient.Client) *goredis.Client {
	if rdb == nil {
		return nil
	}
	return rdb.Client
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
