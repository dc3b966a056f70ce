package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job-selector/internal/analysis"
	googleauth "job-selector/internal/auth"
	"job-selector/internal/resumes"
	"job-selector/internal/services/health"
	"job-selector/internal/shared/config"
	"job-selector/internal/shared/metrics"
	"job-selector/internal/shared/server/middleware"
	"job-selector/internal/shared/server/respond"
	"job-selector/internal/users"
)

// RouterDeps lists the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Tokens          middleware.TokenVerifier
	Health          *health.Service
	UserHandler     *users.Handler
	ResumeHandler   *resumes.Handler
	AnalysisHandler *analysis.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	api.GET("/ready", func(c *gin.Context) {
		report := healthSvc.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterAuthRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(middleware.Auth(deps.Tokens))
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(protected)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(protected)
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
