package server

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	ginhandler "rectangle-service/internal/adapter/gin/handler"
	ginmiddleware "rectangle-service/internal/adapter/gin/middleware"
	ginrouter "rectangle-service/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.RectangleHandler,
	redisClient *redis.Client,
	rateLimit ginmiddleware.TokenBucketConfig,
	serviceName string,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, ginrouter.Options{
		RedisClient: redisClient,
		RateLimit:   rateLimit,
		ServiceName: serviceName,
	}, l)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
