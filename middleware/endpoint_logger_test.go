package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/items/:id", handler)
	return r
}

func TestRequestLogger_BasicRequest(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	var seen string
	r := newLoggedRouter(func(c *gin.Context) {
		seen = c.GetString(util.RequestIDKey)
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/7?foo=bar", nil)
	req.RemoteAddr = "192.168.1.100:1234"
	req.Header.Set("User-Agent", "TestAgent/1.0")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err)
	assert.Equal(t, requestID, seen)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, requestID, entry.Data["request_id"])
	assert.Equal(t, "/items/:id", entry.Data["route"])
	assert.Equal(t, "/items/7", entry.Data["path"])
	assert.Equal(t, "foo=bar", entry.Data["query"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "192.168.1.100", entry.Data["client_ip"])
	assert.Equal(t, "TestAgent/1.0", entry.Data["user_agent"])
}

func TestRequestLogger_ReusesIncomingID(t *testing.T) {
	r := newLoggedRouter(func(c *gin.Context) { c.Status(http.StatusNoContent) })
	incoming := uuid.NewString()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(RequestIDHeader, incoming)
	r.ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
}

func TestRequestLogger_ReplacesInvalidID(t *testing.T) {
	r := newLoggedRouter(func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	r.ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	assert.NotEqual(t, "not-a-uuid", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestRequestLogger_LevelsFollowStatus(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	tests := []struct {
		status int
		level  logrus.Level
	}{
		{http.StatusOK, logrus.InfoLevel},
		{http.StatusNotFound, logrus.WarnLevel},
		{http.StatusUnprocessableEntity, logrus.WarnLevel},
		{http.StatusServiceUnavailable, logrus.ErrorLevel},
	}
	for _, tt := range tests {
		status := tt.status
		r := newLoggedRouter(func(c *gin.Context) { c.Status(status) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/1", nil))

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, tt.level, entry.Level, "status %d", tt.status)
	}
}
