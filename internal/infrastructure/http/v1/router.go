// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"warebase/internal/core/numerator"
	"warebase/internal/domain/audit"
	"warebase/internal/domain/catalogs/product"
	"warebase/internal/domain/catalogs/supplier"
	"warebase/internal/domain/catalogs/warehouse"
	"warebase/internal/domain/directory"
	"warebase/internal/domain/ledger"
	"warebase/internal/domain/orders/purchase"
	"warebase/internal/domain/orders/sales"
	"warebase/internal/infrastructure/http/v1/handlers"
	"warebase/internal/infrastructure/http/v1/middleware"
	"warebase/internal/infrastructure/storage/postgres"
	"warebase/internal/infrastructure/storage/postgres/catalog_repo"
	"warebase/internal/infrastructure/storage/postgres/ledger_repo"
	"warebase/internal/infrastructure/storage/postgres/order_repo"
	"warebase/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the PostgreSQL connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager drives all repository access
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Numerator for document number generation
	Numerator numerator.Generator

	// Auditor records entity history; audit failures never fail requests
	Auditor audit.Recorder

	// AuditStore serves the audit history endpoint
	AuditStore *postgres.AuditService
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

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Live)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Domain wiring. Repos and services are created once; per-request
	// transactions flow through context via the TxManager.
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(cfg.TxManager)
	supplierRepo := catalog_repo.NewSupplierRepo(cfg.TxManager)

	productService := product.NewService(productRepo, cfg.TxManager, cfg.Numerator, cfg.Auditor)
	warehouseService := warehouse.NewService(warehouseRepo, cfg.TxManager, cfg.Numerator, cfg.Auditor)
	supplierService := supplier.NewService(supplierRepo, cfg.TxManager, cfg.Numerator, cfg.Auditor)

	lookup := directory.New(productService, warehouseService, supplierService)

	ledgerRepo := ledger_repo.NewLedgerRepo(cfg.TxManager)
	ledgerService := ledger.NewService(ledgerRepo, lookup, cfg.TxManager, cfg.Auditor)

	purchaseRepo := order_repo.NewPurchaseOrderRepo(cfg.TxManager)
	purchaseService := purchase.NewService(purchaseRepo, ledgerService, lookup, cfg.Numerator, cfg.TxManager, cfg.Auditor)

	salesRepo := order_repo.NewSalesOrderRepo(cfg.TxManager)
	salesService := sales.NewService(salesRepo, ledgerService, lookup, cfg.Numerator, cfg.TxManager, cfg.Auditor)

	baseHandler := handlers.NewBaseHandler()

	// API v1 - all endpoints require a valid bearer token
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(cfg.JWTValidator))
	{
		// Catalogs
		RegisterCatalogRoutes(apiV1.Group("/products"), handlers.NewProductHandler(baseHandler, productService))
		RegisterCatalogRoutes(apiV1.Group("/warehouses"), handlers.NewWarehouseHandler(baseHandler, warehouseService))
		RegisterCatalogRoutes(apiV1.Group("/suppliers"), handlers.NewSupplierHandler(baseHandler, supplierService))

		// Stock ledger
		stockHandler := handlers.NewStockHandler(baseHandler, ledgerService)
		stock := apiV1.Group("/stock")
		{
			stock.GET("/levels", stockHandler.GetLevels)
			stock.GET("/movements", stockHandler.GetMovements)
			stock.POST("/adjustments", stockHandler.PostAdjustment)
			stock.POST("/transfers", stockHandler.PostTransfer)
		}

		// Purchase orders
		poHandler := handlers.NewPurchaseOrderHandler(baseHandler, purchaseService)
		po := apiV1.Group("/purchase-orders")
		{
			po.GET("", poHandler.List)
			po.POST("", poHandler.Create)
			po.GET("/:id", poHandler.Get)
			po.PUT("/:id", poHandler.Update)
			po.DELETE("/:id", poHandler.Delete)
			po.POST("/:id/approve", poHandler.Approve)
			po.POST("/:id/receive", poHandler.Receive)
			po.POST("/:id/cancel", poHandler.Cancel)
		}

		// Sales orders
		soHandler := handlers.NewSalesOrderHandler(baseHandler, salesService)
		so := apiV1.Group("/sales-orders")
		{
			so.GET("", soHandler.List)
			so.POST("", soHandler.Create)
			so.GET("/:id", soHandler.Get)
			so.PUT("/:id", soHandler.Update)
			so.DELETE("/:id", soHandler.Delete)
			so.POST("/:id/confirm", soHandler.Confirm)
			so.POST("/:id/fulfill", soHandler.Fulfill)
			so.POST("/:id/cancel", soHandler.Cancel)
		}

		// Audit trail (admin only)
		if cfg.AuditStore != nil {
			auditHandler := handlers.NewAuditHandler(baseHandler, cfg.AuditStore)
			apiV1.GET("/audit/:entity/:id", middleware.RequireRole("admin"), auditHandler.GetEntityHistory)
		}
	}

	return router
}
