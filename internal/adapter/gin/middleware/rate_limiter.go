package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenBucketConfig configures the HTTP rate limiter.
type TokenBucketConfig struct {
	RequestsPerSecond float64 // refill rate
	BurstCapacity     int     // bucket size
	Enabled           bool
}

// tokenBucket refills and takes one token atomically. State per key: {last_refill, tokens}.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, 60)
	return allowed
`)

// RateLimiter returns a Gin middleware limiting each client IP per method and route with a Redis token bucket.
// Redis errors let the request through.
func RateLimiter(client *redis.Client, cfg TokenBucketConfig, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || client == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:%s:%s:%s", c.Request.Method, route, c.ClientIP())
		now := float64(time.Now().UnixMilli()) / 1000

		allowed, err := tokenBucket.Run(c.Request.Context(), client, []string{key},
			cfg.RequestsPerSecond,
			cfg.BurstCapacity,
			now,
		).Int64()
		if err != nil {
			log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if allowed == 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
				"message": fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)",
					cfg.RequestsPerSecond, cfg.BurstCapacity),
			})
			return
		}

		c.Next()
	}
}
