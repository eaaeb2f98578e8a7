// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/http/v1/handlers"
	"contalink/internal/infrastructure/http/v1/middleware"
	"contalink/internal/infrastructure/storage/postgres"
	"contalink/internal/metadata"
	"contalink/internal/records"
	"contalink/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Resolver maps request hosts to companies
	Resolver *tenant.Resolver

	// ContextFactory adapts requests for tenant key resolution
	ContextFactory tenant.ContextFactory

	// Registry stores view and module definitions
	Registry *metadata.Registry

	// Records executes view queries
	Records *records.Service

	// HealthChecks are probed by /health/ready
	HealthChecks map[string]handlers.Pinger

	// BackendPools is reported by /health/info when records run on postgres
	BackendPools *postgres.BackendPools

	// DevOverrides enables the backend id header on record routes
	DevOverrides bool

	// Metrics, when set, is served at /metrics
	Metrics prometheus.Gatherer
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.ContextFactory == nil {
		cfg.ContextFactory = tenant.NewContextFactory(cfg.DevOverrides, tenant.DefaultOverrideCookie)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks, cfg.BackendPools)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{})))
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TenantSession(cfg.Resolver, cfg.ContextFactory))
	{
		tenantHandler := handlers.NewTenantHandler(base, cfg.Resolver, cfg.Logger)
		t := v1.Group("/tenant")
		t.GET("", tenantHandler.Get)
		t.GET("/host", tenantHandler.Host)
		t.POST("/refresh", tenantHandler.Refresh)
		t.POST("/override", tenantHandler.Override)

		if cfg.Registry != nil {
			RegisterMetadataRoutes(v1.Group("/meta"), handlers.NewMetadataHandler(base, cfg.Registry))
		}

		if cfg.Records != nil {
			views := v1.Group("/views")
			views.Use(middleware.RequireTenant())
			RegisterRecordsRoutes(views, handlers.NewRecordsHandler(base, cfg.Records, cfg.DevOverrides))
		}
	}

	return router
}
