package endpoint

import (
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/middleware"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
)

// Paging defaults shared by the list routes.
const (
	defaultListLimit     = 100
	defaultLatestLimit   = 10
	defaultTrainingLimit = 100
	defaultCompleteLimit = 1000
	maxLimit             = 1000
)

func repositoryFrom(c *gin.Context) (*repository.Repository, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Database connection not available",
			Err: fmt.Errorf("db is nil"),
		})
		return nil, false
	}
	return repository.New(db), true
}

func documentStoreFrom(c *gin.Context) (docstore.Store, bool) {
	store := middleware.GetDocumentStore(c)
	if store == nil {
		util.CallServerError(c, util.APIErrorParams{
			Msg: "Document store not available",
			Err: fmt.Errorf("document store is nil"),
		})
		return nil, false
	}
	return store, true
}

// bindJSON decodes and validates the request body, answering 422 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Invalid request body",
			Err: err,
		})
		return false
	}
	return true
}

func pagination(c *gin.Context, defLimit int) (util.Pagination, bool) {
	page, err := util.ParsePagination(c, defLimit, maxLimit)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return page, false
	}
	return page, true
}

func queryLimit(c *gin.Context, def int) (int, bool) {
	limit, err := util.QueryInt(c, "limit", def, 1, maxLimit)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid query parameters", Err: err})
		return 0, false
	}
	return limit, true
}

func pathID(c *gin.Context, key string) (int64, bool) {
	id, err := util.ParamInt64(c, key)
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid path parameter", Err: err})
		return 0, false
	}
	return id, true
}

// respondError maps a repository, document store or predictor error onto its response.
func respondError(c *gin.Context, msg string, err error) {
	util.CallError(c, util.APIErrorParams{Msg: msg, Err: err})
}
