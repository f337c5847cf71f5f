package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/exports"
	"resume-builder-backend/internal/outreach"
	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/config"
	"resume-builder-backend/internal/shared/metrics"
	"resume-builder-backend/internal/shared/server/middleware"
	"resume-builder-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	ResumesHandler  *resumes.Handler
	OutreachHandler *outreach.Handler
	ExportsHandler  *exports.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.Config.Env == "dev" || deps.Config.Env == "local" {
		api.GET("/dev/metrics", metrics.Handler())
	}

	authed := api.Group("", middleware.Auth())
	if deps.ResumesHandler != nil {
		deps.ResumesHandler.RegisterRoutes(authed)
	}
	if deps.OutreachHandler != nil {
		deps.OutreachHandler.RegisterRoutes(authed)
	}
	if deps.ExportsHandler != nil {
		deps.ExportsHandler.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
