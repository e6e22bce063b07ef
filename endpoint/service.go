package endpoint

import (
	"net/http"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/middleware"
	"github.com/ariebrainware/ml-pipeline-api/util"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Version is reported by the root route. Overridden at build time with -ldflags.
var Version = "1.0.0"

// Root godoc
// @Summary      Welcome
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "Application name and version"
// @Router       / [get]
func Root(c *gin.Context) {
	cfg := config.LoadConfig()
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Welcome to " + cfg.AppName,
		Data: map[string]interface{}{"app": cfg.AppName, "version": Version},
	})
}

// Health godoc
// @Summary      Database health
// @Description  Pings the relational database and the document store
// @Produce      json
// @Success      200 {object} util.APIResponse{data=object} "healthy"
// @Failure      503 {object} util.APIResponse{data=object} "unhealthy"
// @Router       /health [get]
func Health(c *gin.Context) {
	checks := map[string]string{"postgres": "ok", "mongodb": "ok"}
	healthy := true

	if err := config.PingDB(middleware.GetDB(c)); err != nil {
		log.WithError(err).Warn("relational database ping failed")
		checks["postgres"] = "unreachable"
		healthy = false
	}
	if store := middleware.GetDocumentStore(c); store == nil {
		checks["mongodb"] = "not configured"
		healthy = false
	} else if err := store.Ping(c.Request.Context()); err != nil {
		log.WithError(err).Warn("document store ping failed")
		checks["mongodb"] = "unreachable"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, util.APIResponse{
			Success: false,
			Error:   string(util.KindUpstream),
			Msg:     "unhealthy",
			Data:    map[string]interface{}{"status": "unhealthy", "databases": checks},
		})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "healthy",
		Data: map[string]interface{}{"status": "healthy", "databases": checks},
	})
}
