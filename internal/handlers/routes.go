package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"contacts-function/internal/config"
	"contacts-function/internal/middleware"
	"contacts-function/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	ContactService services.ContactService
	Logger         *logrus.Logger
	RoutePrefix    string
	Metrics        *middleware.Metrics
}

// SetupRoutes configures all routes. The contacts resource answers every
// method itself so unsupported ones get its 405 rather than gin's 404.
func SetupRoutes(router *gin.Engine, cfg *RouterConfig) {
	contactsHandler := NewContactsHandler(cfg.ContactService, cfg.Logger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "contacts-function",
		})
	})

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	base := "/"
	if cfg.RoutePrefix != "" {
		base += cfg.RoutePrefix
	}

	contacts := router.Group(base).Group("/contacts")
	contacts.Use(middleware.AuditLogger(cfg.Logger))
	{
		contacts.Any("", contactsHandler.Gin)
		contacts.Any("/:id", contactsHandler.Gin)
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, cfg *config.Config, logger *logrus.Logger, metrics *middleware.Metrics) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(middleware.DefaultMaxBodySize))
	router.Use(middleware.RateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger))

	if metrics != nil {
		router.Use(metrics.Middleware())
	}

	router.Use(middleware.StructuredLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
}

// NewRouter builds a gin engine serving the contacts resource
func NewRouter(cfg *config.Config, contactService services.ContactService, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	metrics := middleware.NewMetrics("contacts")

	SetupMiddleware(router, cfg, logger, metrics)
	SetupRoutes(router, &RouterConfig{
		ContactService: contactService,
		Logger:         logger,
		RoutePrefix:    cfg.RoutePrefix,
		Metrics:        metrics,
	})

	return router
}
