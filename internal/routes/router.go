package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shipment-tracker/internal/config"
	"shipment-tracker/internal/delivery/http/handler"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/logger"
	"shipment-tracker/internal/metrics"
	"shipment-tracker/internal/middleware"
)

// SetupRoutes builds the gin engine. ctx bounds background work such as
// rate limiter cleanup. A nil gatherer disables /metrics.
func SetupRoutes(
	ctx context.Context,
	cfg *config.Config,
	db *postgres.DB,
	services *Services,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestBytes))
	router.Use(middleware.RateLimitMiddleware(limiter))
	router.Use(middleware.MetricsMiddleware(httpMetrics))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	requireUser := middleware.AuthMiddleware(services.Auth)
	optionalUser := middleware.OptionalAuthMiddleware(services.Auth)
	requireUnit := middleware.ControlUnitAuthMiddleware(services.Auth)

	authHandler := handler.NewAuthHandler(services.Auth)
	userHandler := handler.NewUserHandler(services.Users)
	shipmentHandler := handler.NewShipmentHandler(services.Shipments)
	controlUnitHandler := handler.NewControlUnitHandler(services.ControlUnits)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TransactionMiddleware(db))
	{
		authHandler.RegisterRoutes(v1)
		userHandler.RegisterRoutes(v1, requireUser, optionalUser)
		shipmentHandler.RegisterRoutes(v1, requireUser)
		controlUnitHandler.RegisterRoutes(v1, requireUser, requireUnit)
	}

	logger.Info("All routes initialized")
	return router
}
