package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"doclens/internal/config"
	"doclens/internal/handler"
	"doclens/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	processH *handler.ProcessHandler,
	generateH *handler.GenerateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")
	v1.POST("/process-file", processH.ProcessFile)
	v1.POST("/generate", generateH.Generate)

	return r
}
