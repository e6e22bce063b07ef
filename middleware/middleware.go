package middleware

import (
	"net/http"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/predictor"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	dbKey        = "db"
	docStoreKey  = "docstore"
	predictorKey = "predictor"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		setCorsHeaders(c)

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setCorsHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
	h.Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization, "+RequestIDHeader)
	h.Set("Access-Control-Expose-Headers", RequestIDHeader)
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Content-Type", "application/json")
}

// DatabaseMiddleware makes the relational database available to handlers.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

// GetDB returns the request scoped relational database, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	db, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	gdb, _ := db.(*gorm.DB)
	if gdb == nil {
		return nil
	}
	return gdb.WithContext(c.Request.Context())
}

// DocumentStoreMiddleware makes the document store available to handlers.
func DocumentStoreMiddleware(store docstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(docStoreKey, store)
		c.Next()
	}
}

func GetDocumentStore(c *gin.Context) docstore.Store {
	store, _ := c.Get(docStoreKey)
	s, _ := store.(docstore.Store)
	return s
}

// PredictorMiddleware makes the prediction service available to handlers.
func PredictorMiddleware(svc *predictor.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(predictorKey, svc)
		c.Next()
	}
}

func GetPredictor(c *gin.Context) *predictor.Service {
	svc, _ := c.Get(predictorKey)
	s, _ := svc.(*predictor.Service)
	return s
}
