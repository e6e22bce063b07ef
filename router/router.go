// Package router builds the gin engine and mounts every route.
package router

import (
	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/endpoint"
	"github.com/ariebrainware/ml-pipeline-api/middleware"
	"github.com/ariebrainware/ml-pipeline-api/predictor"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// crud is the handler set shared by relational and document resources.
type crud interface {
	List(c *gin.Context)
	Latest(c *gin.Context)
	ByPatient(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	HasOwner() bool
}

// mount registers the routes of one entity. The by-patient route only exists
// for entities that belong to a patient.
func mount(g *gin.RouterGroup, path string, res crud) {
	r := g.Group(path)
	r.GET("", res.List)
	r.GET("/latest", res.Latest)
	if res.HasOwner() {
		r.GET("/patient/:patient_id", res.ByPatient)
	}
	r.GET("/:id", res.Get)
	r.POST("", res.Create)
	r.PUT("/:id", res.Update)
	r.DELETE("/:id", res.Delete)
}

// New returns the engine serving both backends. svc may be nil, in which case
// prediction routes answer 503.
func New(db *gorm.DB, store docstore.Store, svc *predictor.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.DocumentStoreMiddleware(store))
	r.Use(middleware.PredictorMiddleware(svc))

	r.GET("/", endpoint.Root)
	r.GET("/health", endpoint.Health)

	v1 := r.Group("/api/v1")

	pg := v1.Group("/postgres")
	{
		mount(pg, "/patients", endpoint.Patients)
		mount(pg, "/health-conditions", endpoint.HealthConditions)
		mount(pg, "/lifestyle-factors", endpoint.LifestyleFactors)
		mount(pg, "/health-metrics", endpoint.HealthMetrics)
		mount(pg, "/healthcare-access", endpoint.HealthcareAccess)

		pg.GET("/training-data/latest", endpoint.LatestTrainingData)
		pg.GET("/training-data/complete", endpoint.CompleteTrainingData)

		logs := pg.Group("/logs/validation")
		logs.GET("", endpoint.ListValidationLogs)
		logs.GET("/recent", endpoint.RecentValidationLogs)
		logs.GET("/stats", endpoint.ValidationLogStats)
		logs.DELETE("/clear", endpoint.ClearValidationLogs)
		logs.DELETE("/:id", endpoint.DeleteValidationLog)

		predict := pg.Group("/predict")
		predict.Use(middleware.RateLimiter(middleware.RateLimitConfigFromEnv()))
		predict.POST("/patient/:patient_id", endpoint.PredictPatient)
		predict.POST("/latest", endpoint.PredictLatest)
		predict.POST("/batch", endpoint.PredictBatch)

		pg.GET("/predictions", endpoint.ListPredictions)
		pg.GET("/predictions/patient/:patient_id", endpoint.PatientPredictions)
	}

	mongo := v1.Group("/mongodb")
	{
		mount(mongo, "/patients", endpoint.PatientDocuments)
		mongo.GET("/patients/by-patient-id/:patient_id", endpoint.PatientDocuments.ByPatientID)
		mount(mongo, "/health-conditions", endpoint.HealthConditionDocuments)
		mount(mongo, "/lifestyle-factors", endpoint.LifestyleFactorDocuments)
		mount(mongo, "/health-metrics", endpoint.HealthMetricDocuments)
		mount(mongo, "/healthcare-access", endpoint.HealthcareAccessDocuments)

		mongo.GET("/all/latest", endpoint.AllLatestDocuments)
		mongo.GET("/training-data/latest", endpoint.LatestDocumentTrainingData)
		mongo.GET("/training-data/complete", endpoint.CompleteDocumentTrainingData)
	}

	return r
}
