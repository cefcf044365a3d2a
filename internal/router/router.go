package router

import (
	"time"

	"blendcatalog/internal/config"
	"blendcatalog/internal/handler"
	"blendcatalog/internal/infra"
	"blendcatalog/internal/middleware"
	"blendcatalog/internal/repository"
	"blendcatalog/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, assetCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	assetClient := infra.NewAssetClient(cfg.AssetServiceURL, assetCB)
	pdfRenderer := infra.NewLotPDFRenderer(cfg.BusinessName)

	// ── Repositories ─────────────────────────────────────────────────────────
	attrRepo := repository.NewAttributeRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	skuRepo := repository.NewSKURepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	lotRepo := repository.NewLotRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	attrSvc := service.NewAttributeService(attrRepo)
	categorySvc := service.NewCategoryService(categoryRepo, attrRepo, productRepo)
	productSvc := service.NewProductService(productRepo, attrRepo, categorySvc, assetClient)
	skuSvc := service.NewSKUService(skuRepo, productRepo, attrRepo, lotRepo, historyRepo, assetClient)
	lotSvc := service.NewLotService(lotRepo, supplierRepo, pdfRenderer)
	supplierSvc := service.NewSupplierService(supplierRepo, lotRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	attributesH := handler.NewAttributesHandler(attrSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	productsH := handler.NewProductsHandler(productSvc)
	skusH := handler.NewSKUsHandler(skuSvc)
	lotsH := handler.NewLotsHandler(lotSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	lookupH := handler.NewSKULookupHandler(skuSvc, rdb,
		time.Duration(cfg.LookupCacheTTLSeconds)*time.Second)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, assetClient))

	// SKU lookup — no auth required, read-only for Order/Checkout
	r.GET("/v1/lookup/sku/:code", lookupH.Lookup)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operator, catalog_manager, admin — declared per-endpoint

		// Attribute registry — managers write, everyone authenticated reads
		v1.GET("/attributes", middleware.RequireRole("operator", "catalog_manager", "admin"), attributesH.List)
		v1.GET("/attributes/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), attributesH.Get)
		attrs := v1.Group("/attributes", middleware.RequireRole("catalog_manager", "admin"))
		{
			attrs.POST("", attributesH.Create)
			attrs.PUT("/:id", attributesH.Update)
			attrs.DELETE("/:id", attributesH.Deactivate)
		}

		// Category tree
		v1.GET("/categories/tree", middleware.RequireRole("operator", "catalog_manager", "admin"), categoriesH.Tree)
		v1.GET("/categories/flat", middleware.RequireRole("operator", "catalog_manager", "admin"), categoriesH.Flat)
		v1.GET("/categories/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), categoriesH.Get)
		cats := v1.Group("/categories", middleware.RequireRole("catalog_manager", "admin"))
		{
			cats.POST("", categoriesH.Create)
			cats.PUT("/:id", categoriesH.Update)
			cats.PATCH("/:id/parent", categoriesH.Reparent)
			cats.DELETE("/:id/attributes/:attributeId", categoriesH.RemoveAttribute)
			cats.DELETE("/:id", categoriesH.Delete)
		}

		// Products
		v1.GET("/products", middleware.RequireRole("operator", "catalog_manager", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), productsH.Get)
		v1.GET("/products/:id/relevant-attributes", middleware.RequireRole("operator", "catalog_manager", "admin"), productsH.RelevantAttributes)
		prods := v1.Group("/products", middleware.RequireRole("catalog_manager", "admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Archive)
			prods.POST("/:id/variants/generate", skusH.GenerateVariants)
			prods.POST("/:id/variants/commit", skusH.CommitVariants)
		}

		// SKUs
		v1.GET("/skus", middleware.RequireRole("operator", "catalog_manager", "admin"), skusH.List)
		v1.GET("/skus/export", middleware.RequireRole("catalog_manager", "admin"), skusH.Export)
		v1.GET("/skus/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), skusH.Get)
		v1.GET("/skus/:id/price-history", middleware.RequireRole("operator", "catalog_manager", "admin"), skusH.PriceHistory)
		// Allocation is called by the order service with an operator token.
		v1.POST("/skus/:id/allocate", middleware.RequireRole("operator", "catalog_manager", "admin"), skusH.Allocate)
		skus := v1.Group("/skus", middleware.RequireRole("catalog_manager", "admin"))
		{
			skus.PUT("/:id", skusH.Update)
			skus.DELETE("/:id", skusH.Delete)
		}

		// Lots — the inventory ledger
		v1.GET("/lots", middleware.RequireRole("operator", "catalog_manager", "admin"), lotsH.List)
		v1.GET("/lots/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), lotsH.Get)
		v1.GET("/lots/:id/report", middleware.RequireRole("catalog_manager", "admin"), lotsH.Report)
		lots := v1.Group("/lots", middleware.RequireRole("catalog_manager", "admin"))
		{
			lots.POST("", lotsH.Create)
			lots.PATCH("/:id/status", lotsH.SetStatus)
			lots.POST("/:id/adjustments", lotsH.AppendAdjustment)
			lots.DELETE("/:id/adjustments/:adjustmentId", lotsH.RemoveAdjustment)
		}

		// Suppliers
		v1.GET("/suppliers", middleware.RequireRole("operator", "catalog_manager", "admin"), suppliersH.List)
		v1.GET("/suppliers/:id", middleware.RequireRole("operator", "catalog_manager", "admin"), suppliersH.Get)
		sups := v1.Group("/suppliers", middleware.RequireRole("catalog_manager", "admin"))
		{
			sups.POST("", suppliersH.Create)
			sups.PUT("/:id", suppliersH.Update)
			sups.DELETE("/:id", suppliersH.Delete)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
