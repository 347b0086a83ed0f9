// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"birrificio/internal/domain/brewing"
	"birrificio/internal/domain/catalog"
	"birrificio/internal/domain/expiry"
	"birrificio/internal/domain/sales"
	"birrificio/internal/domain/warehouse"
	"birrificio/internal/domain/year"
	"birrificio/internal/infrastructure/backup"
	"birrificio/internal/infrastructure/http/v1/handlers"
	"birrificio/internal/infrastructure/http/v1/middleware"
	"birrificio/pkg/logger"
)

// RouterConfig holds the services the router exposes.
type RouterConfig struct {
	Logger *logger.Logger

	Warehouse  *warehouse.Service
	Brewing    *brewing.Service
	Sales      *sales.Service
	Catalog    *catalog.Service
	Years      *year.Service
	Reconciler *expiry.Reconciler
	Backup     *backup.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		yearsHandler := handlers.NewYearsHandler(base, cfg.Years, cfg.Reconciler, cfg.Backup)

		// Year-scoped endpoints carry the fiscal year in the path.
		yearScoped := api.Group("/years/:year")
		yearScoped.Use(middleware.Year())

		yearsHandler.RegisterRoutes(api, yearScoped)
		handlers.NewWarehouseHandler(base, cfg.Warehouse).RegisterRoutes(yearScoped)
		handlers.NewBrewingHandler(base, cfg.Brewing).RegisterRoutes(yearScoped)
		handlers.NewBeerStockHandler(base, cfg.Sales).RegisterRoutes(yearScoped)
		handlers.NewCatalogHandler(base, cfg.Catalog).RegisterRoutes(yearScoped)
	}

	return router
}
