package api

import (
	"net/http"
	"os"

	"character-dialog-service/backend/pkg/config"
	apperrors "character-dialog-service/backend/pkg/errors"
	"character-dialog-service/backend/pkg/health"
	"character-dialog-service/backend/pkg/logger"
	"character-dialog-service/backend/pkg/middleware"
	"character-dialog-service/backend/pkg/observability"
	"character-dialog-service/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// NewRouter builds the gin engine with the full middleware chain and every
// route this service serves.
func NewRouter(cfg *config.Config, log *logger.Logger, tc *TurnController, checker *health.Checker) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestID())
	engine.Use(logger.Middleware(log))
	engine.Use(apperrors.RecoveryWithLogger())
	engine.Use(apperrors.ErrorHandler())

	limiter := middleware.NewRateLimiter(log, middleware.RateLimiterOptions{
		Limit:          rate.Limit(cfg.Security.RateLimit),
		Burst:          cfg.Security.RateLimitBurst,
		ExpiryDuration: middleware.DefaultRateLimiterOptions().ExpiryDuration,
		KeyFunc:        middleware.DefaultRateLimiterOptions().KeyFunc,
	})
	engine.Use(limiter.Middleware())

	if cfg.OpenAPISchema != "" {
		if _, err := os.Stat(cfg.OpenAPISchema); err == nil {
			if v, err := validator.NewOpenAPIValidator(cfg.OpenAPISchema); err == nil {
				engine.Use(v.Middleware())
				log.Info("OpenAPI request validation enabled", "schema", cfg.OpenAPISchema)
			} else {
				log.Warn("failed to load OpenAPI schema, validation disabled", "error", err)
			}
		}
	}

	// Non-POST on /api answers 405; anything else unknown answers 404.
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	RegisterSmokeRoutes(engine)

	engine.POST("/api", tc.HandleTurn)
	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/health/details", checker.Handler())
	engine.GET("/metrics", observability.MetricsHandler())

	return engine
}
