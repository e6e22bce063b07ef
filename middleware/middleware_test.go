package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/predictor"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetCorsHeadersDefaults(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	setCorsHeaders(c)

	assert.Equal(t, "*", c.Writer.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, c.Writer.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, c.Writer.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	called := false
	r.PUT("/resource", func(c *gin.Context) { called = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/resource", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/resource", nil))
	assert.True(t, called)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInjectionMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	store := docstore.NewMemory()
	svc := predictor.NewService(nil, predictor.FileSource{Dir: t.TempDir()}, predictor.Options{})

	r := gin.New()
	r.Use(DatabaseMiddleware(db), DocumentStoreMiddleware(store), PredictorMiddleware(svc))
	r.GET("/test", func(c *gin.Context) {
		assert.NotNil(t, GetDB(c))
		assert.Same(t, store, GetDocumentStore(c))
		assert.Same(t, svc, GetPredictor(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGettersWithoutMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, GetDB(c))
	assert.Nil(t, GetDocumentStore(c))
	assert.Nil(t, GetPredictor(c))
}
