package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"rectangle-service/pkg/logger"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.GetRequestID(c.Request.Context()))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func get(r *gin.Engine, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := newEngine(RateLimiter(client, TokenBucketConfig{
		RequestsPerSecond: 0.001,
		BurstCapacity:     3,
		Enabled:           true,
	}, zaptest.NewLogger(t)))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code, "request %d", i)
	}

	w := get(r, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimiter_SeparateBucketsPerClient(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := newEngine(RateLimiter(client, TokenBucketConfig{
		RequestsPerSecond: 0.001,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t)))
	r.ForwardedByClientIP = true
	require.NoError(t, r.SetTrustedProxies([]string{"0.0.0.0/0"}))

	assert.Equal(t, http.StatusOK, get(r, "/ping", http.Header{"X-Forwarded-For": {"10.0.0.1"}}).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping", http.Header{"X-Forwarded-For": {"10.0.0.1"}}).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", http.Header{"X-Forwarded-For": {"10.0.0.2"}}).Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)
	r := newEngine(RateLimiter(client, TokenBucketConfig{BurstCapacity: 1}, zaptest.NewLogger(t)))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	r := newEngine(RateLimiter(client, TokenBucketConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t)))
	mr.Close()

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := get(r, "/ping", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(logger.RequestIDHeader))

	w = get(r, "/ping", http.Header{"X-Request-Id": {"given"}})
	assert.Equal(t, "given", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(Recovery(zaptest.NewLogger(t)))

	w := get(r, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newEngine(RequestID(), Logger(zap.New(core)))

	get(r, "/ping", nil)
	get(r, "/missing", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
