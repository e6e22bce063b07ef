package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/predict/:id", RateLimiter(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return r
}

func predictRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/predict/1", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	return req
}

func TestRateLimiter_WithoutRedis(t *testing.T) {
	config.UseRedisClient(nil)
	r := newLimitedRouter(RateLimitConfig{Limit: 1, Window: time.Minute})

	// Without Redis, all requests should be allowed
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, predictRequest())
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/predict/:id", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectExpireNX(key, time.Minute).SetVal(false)

	w := httptest.NewRecorder()
	newLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute}).ServeHTTP(w, predictRequest())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/predict/:id", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(3)
	mock.ExpectExpireNX(key, time.Minute).SetVal(false)

	w := httptest.NewRecorder()
	newLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute}).ServeHTTP(w, predictRequest())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	var body util.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, string(util.KindRateLimited), body.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/predict/:id", "192.168.1.1")
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))
	mock.ExpectExpireNX(key, time.Minute).SetErr(errors.New("connection refused"))

	w := httptest.NewRecorder()
	newLimitedRouter(RateLimitConfig{Limit: 2, Window: time.Minute}).ServeHTTP(w, predictRequest())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_DefaultConfig(t *testing.T) {
	mock := setupRedisMock(t)
	key := rateLimitKey("/predict/:id", "192.168.1.1")
	mock.ExpectIncr(key).SetVal(defaultRateLimit)
	mock.ExpectExpireNX(key, defaultRateWindow).SetVal(true)

	w := httptest.NewRecorder()
	newLimitedRouter(RateLimitConfig{}).ServeHTTP(w, predictRequest())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitConfigFromEnv(t *testing.T) {
	t.Setenv("PREDICT_RATE_LIMIT", "7")
	t.Setenv("PREDICT_RATE_WINDOW", "10s")
	config.ResetForTest()
	t.Cleanup(config.ResetForTest)

	cfg := RateLimitConfigFromEnv()
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, 10*time.Second, cfg.Window)
}

func TestResetRateLimit(t *testing.T) {
	config.UseRedisClient(nil)
	assert.Error(t, resetRateLimit(context.Background(), "192.168.1.1", "/predict/:id"))

	mock := setupRedisMock(t)
	mock.ExpectDel(rateLimitKey("/predict/:id", "192.168.1.1")).SetVal(1)
	assert.NoError(t, resetRateLimit(context.Background(), "192.168.1.1", "/predict/:id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func setupRedisMock(t *testing.T) redismock.ClientMock {
	t.Helper()
	rdb, mock := redismock.NewClientMock()
	config.UseRedisClient(rdb)
	t.Cleanup(func() { config.UseRedisClient(nil) })
	return mock
}
