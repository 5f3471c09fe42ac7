package middleware

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// RateLimiterConfig configures the fixed-window limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	WindowSeconds     int
	Enabled           bool
}

// limit is the number of calls allowed per window; never below one.
func (c RateLimiterConfig) limit() int64 {
	n := int64(c.RequestsPerSecond * float64(c.WindowSeconds))
	if n < 1 {
		return 1
	}
	return n
}

// fixedWindowScript counts calls in the current window and starts the expiry on the first one.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
end
return count
`)

// RateLimiter limits unary calls per method and client using Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a rate limiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// UnaryInterceptor returns a gRPC unary interceptor for rate limiting.
func (rl *RateLimiter) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !rl.config.Enabled || rl.client == nil || rl.config.WindowSeconds <= 0 {
			return handler(ctx, req)
		}

		clientIP := clientAddr(ctx)
		key := fmt.Sprintf("ratelimit:fw:%s:%s", info.FullMethod, clientIP)
		limit := rl.config.limit()

		count, err := fixedWindowScript.Run(ctx, rl.client, []string{key}, rl.config.WindowSeconds).Int64()
		if err != nil {
			// fail open
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			return handler(ctx, req)
		}

		if count > limit {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("method", info.FullMethod),
				zap.Int64("count", count),
				zap.Int64("limit", limit),
			)
			return nil, status.Errorf(codes.ResourceExhausted,
				"rate limit exceeded: %d calls in %ds window (limit %d)", count, rl.config.WindowSeconds, limit)
		}

		return handler(ctx, req)
	}
}

// clientAddr identifies the caller: forwarding headers first, then the peer host without its port.
func clientAddr(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}

	return "unknown"
}
