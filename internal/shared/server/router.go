package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pixology-backend/internal/artifacts"
	googleauth "pixology-backend/internal/auth"
	"pixology-backend/internal/generations"
	"pixology-backend/internal/quota"
	"pixology-backend/internal/services/health"
	"pixology-backend/internal/shared/config"
	"pixology-backend/internal/shared/metrics"
	"pixology-backend/internal/shared/server/middleware"
	"pixology-backend/internal/shared/server/respond"
	"pixology-backend/internal/users"
)

// RouterDeps carries the constructed handlers the router wires up.
type RouterDeps struct {
	Config            config.Config
	GenerationHandler *generations.Handler
	QuotaHandler      *quota.Handler
	ArtifactHandler   *artifacts.Handler
	UserHandler       *users.Handler
	GoogleAuth        *googleauth.GoogleService
}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"GENERATE": {Rate: 0.5, Burst: 3},
			"DEFAULT":  {Rate: 5, Burst: 20},
		},
		GroupFor: rateLimitGroup,
	}))

	healthSvc := health.NewService()
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.QuotaHandler != nil {
		deps.QuotaHandler.RegisterRoutes(api)
	}
	if deps.ArtifactHandler != nil {
		deps.ArtifactHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/generations") {
		return "GENERATE"
	}
	return "DEFAULT"
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
