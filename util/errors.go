package util

import (
	"errors"
	"net/http"
)

// ErrorKind is the wire code carried in APIResponse.Error.
type ErrorKind string

const (
	KindNotFound    ErrorKind = "not_found"
	KindValidation  ErrorKind = "validation_error"
	KindUpstream    ErrorKind = "upstream_unavailable"
	KindInternal    ErrorKind = "internal_error"
	KindRateLimited ErrorKind = "rate_limited"
)

// Sentinel errors shared by the repository, document store and predictor packages.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

func (k ErrorKind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUpstream:
		return http.StatusServiceUnavailable
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// KindOf classifies err by the sentinel it wraps. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstream
	default:
		return KindInternal
	}
}
