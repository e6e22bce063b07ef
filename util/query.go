package util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Pagination is the skip/limit pair accepted by every list route.
type Pagination struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// QueryInt reads an integer query parameter, returning def when it is absent.
// Values below lower (or above upper when upper > 0) are rejected.
func QueryInt(c *gin.Context, key string, def, lower, upper int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, key)
	}
	if v < lower {
		return 0, fmt.Errorf("%w: %s must be >= %d", ErrInvalidInput, key, lower)
	}
	if upper > 0 && v > upper {
		return 0, fmt.Errorf("%w: %s must be <= %d", ErrInvalidInput, key, upper)
	}
	return v, nil
}

// ParsePagination reads skip (>= 0) and limit (>= 1, at most maxLimit when positive).
func ParsePagination(c *gin.Context, defLimit, maxLimit int) (Pagination, error) {
	skip, err := QueryInt(c, "skip", 0, 0, 0)
	if err != nil {
		return Pagination{}, err
	}
	limit, err := QueryInt(c, "limit", defLimit, 1, maxLimit)
	if err != nil {
		return Pagination{}, err
	}
	return Pagination{Skip: skip, Limit: limit}, nil
}

// ParamInt64 reads a positive integer path parameter.
func ParamInt64(c *gin.Context, key string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidInput, key)
	}
	return v, nil
}
