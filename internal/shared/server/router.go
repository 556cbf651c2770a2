package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"submission-backend/internal/recommendations"
	"submission-backend/internal/services/health"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/metrics"
	"submission-backend/internal/shared/server/middleware"
	"submission-backend/internal/shared/server/respond"
	"submission-backend/internal/submissions"
	"submission-backend/internal/translations"
)

// RouterDeps holds the handlers mounted by NewRouter. Nil handlers are
// skipped.
type RouterDeps struct {
	Config                config.Config
	Health                *health.Service
	RecommendationHandler *recommendations.Handler
	SubmissionHandler     *submissions.Handler
	TranslationHandler    *translations.Handler
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

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	if deps.RecommendationHandler != nil {
		deps.RecommendationHandler.RegisterRoutes(api)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterRoutes(api)
	}
	if deps.TranslationHandler != nil {
		deps.TranslationHandler.RegisterRoutes(api)
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
