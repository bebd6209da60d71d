package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/config"
	"github.com/melaka-ybbae/pnl-ai-sync/handler"
	"github.com/melaka-ybbae/pnl-ai-sync/middleware"
	"github.com/melaka-ybbae/pnl-ai-sync/service"
)

// dependencies are the long-lived services the routes are built from.
type dependencies struct {
	registry  *service.Registry
	backend   *service.BackendClient
	presigner handler.Presigner
}

func setupRouter(cfg *config.Config, deps dependencies) *gin.Engine {
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(noCacheMiddleware())
	router.Use(middleware.RateLimit(middleware.NewRateLimiter(&cfg.RateLimit)))

	authHandler := handler.NewAuthHandler(cfg)
	syncHandler := handler.NewSyncHandler(deps.registry, deps.backend, deps.presigner, &cfg.Sync)
	viewHandler := handler.NewViewHandler(deps.registry)
	analysisHandler := handler.NewAnalysisHandler(deps.registry)
	documentHandler := handler.NewDocumentHandler(deps.backend)
	ledgerHandler := handler.NewLedgerHandler(deps.backend)
	reportHandler := handler.NewReportHandler(deps.backend, cfg.Sync.IncludeAIEnabled())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"workspaces": deps.registry.Count(),
			"timestamp":  time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/sync/upload", syncHandler.Upload)
		protected.POST("/sync/batch", syncHandler.Batch)
		protected.GET("/sync/state", syncHandler.State)
		protected.PUT("/sync/smart-parsing", syncHandler.SetSmartParsing)
		protected.GET("/sync/session/status", syncHandler.SessionStatus)
		protected.POST("/sync/generate", syncHandler.Generate)
		protected.GET("/sync/statement", syncHandler.Statement)
		protected.POST("/sync/reset", syncHandler.Reset)
		protected.GET("/sync/template", syncHandler.Template)
		protected.GET("/sync/template.xlsx", syncHandler.TemplateWorkbook)
		protected.GET("/sync/archive/:category", syncHandler.ArchiveURL)

		protected.GET("/view/stream", viewHandler.Stream)
		protected.GET("/view/:slot", viewHandler.Get)

		protected.POST("/analysis/monthly", analysisHandler.Monthly)
		protected.POST("/analysis/product-cost", analysisHandler.ProductCost)
		protected.POST("/analysis/simulation", analysisHandler.Simulation)
		protected.GET("/analysis/sensitivity", analysisHandler.Sensitivity)

		protected.GET("/documents", documentHandler.List)
		protected.GET("/documents/:id", documentHandler.Get)

		protected.GET("/receivables", ledgerHandler.Receivables)
		protected.GET("/receivables/summary", ledgerHandler.ReceivableSummary)
		protected.GET("/receivables/aging", ledgerHandler.ReceivableAging)
		protected.GET("/payables", ledgerHandler.Payables)
		protected.GET("/payables/summary", ledgerHandler.PayableSummary)

		protected.GET("/reports/preview", reportHandler.Preview)
	}

	return router
}

// noCacheMiddleware keeps browsers from caching API answers, which change
// with every upload.
func noCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}
