package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rectangle-service/internal/adapter/gin/handler"
	"rectangle-service/internal/adapter/gin/middleware"
)

// Options carries the optional pieces of the router.
type Options struct {
	RedisClient *redis.Client // nil disables rate limiting
	RateLimit   middleware.TokenBucketConfig
	ServiceName string
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(rectangleHandler *handler.RectangleHandler, opts Options, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(opts.RedisClient, opts.RateLimit, log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": opts.ServiceName,
		})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/area", rectangleHandler.Area)

		rectangles := v1.Group("/rectangles")
		{
			rectangles.POST("", rectangleHandler.CreateRectangle)
			rectangles.GET("", rectangleHandler.ListRectangles)
			rectangles.GET("/:id", rectangleHandler.GetRectangle)
			rectangles.GET("/:id/display", rectangleHandler.DisplayRectangle)
			rectangles.DELETE("/:id", rectangleHandler.DeleteRectangle)
		}
	}

	return router
}
