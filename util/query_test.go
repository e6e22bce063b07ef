package util

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    Pagination
		wantErr bool
	}{
		{"defaults", "/x", Pagination{Skip: 0, Limit: 100}, false},
		{"explicit", "/x?skip=20&limit=5", Pagination{Skip: 20, Limit: 5}, false},
		{"empty values", "/x?skip=&limit=", Pagination{Skip: 0, Limit: 100}, false},
		{"negative skip", "/x?skip=-1", Pagination{}, true},
		{"zero limit", "/x?limit=0", Pagination{}, true},
		{"limit above max", "/x?limit=1001", Pagination{}, true},
		{"not a number", "/x?limit=ten", Pagination{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePagination(contextFor(tt.target), 100, 1000)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryInt_NoUpperBound(t *testing.T) {
	v, err := QueryInt(contextFor("/x?days=365"), "days", 30, 1, 0)
	assert.NoError(t, err)
	assert.Equal(t, 365, v)

	_, err = QueryInt(contextFor("/x?days=0"), "days", 30, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParamInt64(t *testing.T) {
	c := contextFor("/x")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := ParamInt64(c, "id")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"abc", "0", "-3", ""} {
		c.Params = gin.Params{{Key: "id", Value: bad}}
		_, err := ParamInt64(c, "id")
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}
