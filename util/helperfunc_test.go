package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func perform(t *testing.T, target string, handler gin.HandlerFunc) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/test", handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)

	var resp APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestCallSuccessOK(t *testing.T) {
	w, resp := perform(t, "/test", func(c *gin.Context) {
		CallSuccessOK(c, APISuccessParams{Msg: "ok", Data: map[string]int{"n": 1}})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "ok", resp.Msg)
}

func TestCallCreated(t *testing.T) {
	w, resp := perform(t, "/test", func(c *gin.Context) {
		CallCreated(c, APISuccessParams{Msg: "created"})
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context, params APIErrorParams)
		status int
		kind   ErrorKind
	}{
		{"not found", CallErrorNotFound, http.StatusNotFound, KindNotFound},
		{"user error", CallUserError, http.StatusUnprocessableEntity, KindValidation},
		{"server error", CallServerError, http.StatusInternalServerError, KindInternal},
		{"upstream", CallUpstreamUnavailable, http.StatusServiceUnavailable, KindUpstream},
		{"rate limited", CallRateLimited, http.StatusTooManyRequests, KindRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := perform(t, "/test", func(c *gin.Context) {
				tt.call(c, APIErrorParams{Msg: "boom", Err: errors.New("detail")})
			})
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, string(tt.kind), resp.Error)
		})
	}
}

func TestCallServerError_DoesNotLeakDetails(t *testing.T) {
	_, resp := perform(t, "/test", func(c *gin.Context) {
		CallServerError(c, APIErrorParams{Msg: "Failed to retrieve patients", Err: errors.New("pq: relation does not exist")})
	})
	assert.Equal(t, "Failed to retrieve patients", resp.Msg)
	assert.NotContains(t, resp.Msg, "pq:")
}

func TestCallUserError_IncludesDetail(t *testing.T) {
	_, resp := perform(t, "/test", func(c *gin.Context) {
		CallUserError(c, APIErrorParams{Msg: "Invalid request", Err: errors.New("PatientID is required")})
	})
	assert.Equal(t, "Invalid request: PatientID is required", resp.Msg)
}

func TestCallError_MapsSentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("patient 4: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad id", ErrInvalidInput), http.StatusUnprocessableEntity},
		{fmt.Errorf("model: %w", ErrUpstreamUnavailable), http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w, _ := perform(t, "/test", func(c *gin.Context) {
			CallError(c, APIErrorParams{Msg: "failed", Err: tt.err})
		})
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidInput))
	assert.Equal(t, KindUpstream, KindOf(ErrUpstreamUnavailable))
}
