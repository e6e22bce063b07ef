package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

func callError(c *gin.Context, kind ErrorKind, params APIErrorParams) {
	msg := params.Msg
	entry := log.WithFields(log.Fields{
		"request_id": c.GetString(RequestIDKey),
		"kind":       kind,
		"path":       c.Request.URL.Path,
	})
	switch kind {
	case KindInternal, KindUpstream:
		// Error details stay in the server log.
		if params.Err != nil {
			entry = entry.WithError(params.Err)
		}
		entry.Error(msg)
	default:
		if params.Err != nil && params.Err.Error() != msg {
			msg = msg + ": " + params.Err.Error()
		}
		entry.Debug(msg)
	}

	c.AbortWithStatusJSON(kind.Status(), APIResponse{
		Success: false,
		Error:   string(kind),
		Msg:     msg,
		Data:    map[string]interface{}{},
	})
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	callError(c, KindNotFound, params)
}

// CallUserError is for return error from user side (malformed body, path or query)
func CallUserError(c *gin.Context, params APIErrorParams) {
	callError(c, KindValidation, params)
}

// CallServerError is for return API response server error. The wrapped error is logged, not returned.
func CallServerError(c *gin.Context, params APIErrorParams) {
	callError(c, KindInternal, params)
}

// CallUpstreamUnavailable is for a dependency the request needs but cannot reach (model artifact, database)
func CallUpstreamUnavailable(c *gin.Context, params APIErrorParams) {
	callError(c, KindUpstream, params)
}

// CallRateLimited is for return API response with status code 429
func CallRateLimited(c *gin.Context, params APIErrorParams) {
	callError(c, KindRateLimited, params)
}

// CallError maps err to its kind with KindOf and writes the matching response.
func CallError(c *gin.Context, params APIErrorParams) {
	callError(c, KindOf(params.Err), params)
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	response := APIResponse{
		Success: true,
		Error:   "",
		Msg:     params.Msg,
		Data:    params.Data,
	}
	c.JSON(http.StatusOK, response)
}

// CallCreated is for return API response with status code 201
func CallCreated(c *gin.Context, params APISuccessParams) {
	response := APIResponse{
		Success: true,
		Error:   "",
		Msg:     params.Msg,
		Data:    params.Data,
	}
	c.JSON(http.StatusCreated, response)
}
