package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/SuhaniChatterjee/medstock-wise/internal/api/handlers"
	"github.com/SuhaniChatterjee/medstock-wise/internal/api/middleware"
	"github.com/SuhaniChatterjee/medstock-wise/internal/auth"
	"github.com/SuhaniChatterjee/medstock-wise/internal/domain"
	"github.com/SuhaniChatterjee/medstock-wise/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Services struct {
	Predictions   *service.PredictionService
	Optimizations *service.OptimizationService
	Seed          *service.SeedService
	Inventory     *service.InventoryService
	Alerts        *service.AlertService
	Dashboard     *service.DashboardService
	Identity      auth.IdentityProvider
}

type RouterConfig struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	ServiceName    string
}

func NewRouter(services *Services, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "medstock-wise"
	}

	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	// cors only answers preflights that carry an Origin header
	router.OPTIONS("/functions/v1/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if services == nil || services.Identity == nil {
		return router
	}
	requireAuth := middleware.RequireAuth(services.Identity)
	managers := middleware.RequireRole(domain.RoleManager)
	admins := middleware.RequireRole(domain.RoleAdmin)

	functions := handlers.NewFunctionsHandler(services.Predictions, services.Optimizations, services.Seed)
	fnGroup := router.Group("/functions/v1", requireAuth)
	{
		fnGroup.POST("/run-predictions", functions.RunPredictions)
		fnGroup.POST("/calculate-cost-optimization", functions.CalculateCostOptimization)
		fnGroup.POST("/seed-sample-data", functions.SeedSampleData)
	}

	apiGroup := router.Group("/api/v1", requireAuth)

	if services.Inventory != nil {
		inventory := handlers.NewInventoryHandler(services.Inventory, cfg.MaxUploadBytes)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("", inventory.List)
			inventoryGroup.GET("/:id", inventory.Get)
			inventoryGroup.POST("", managers, inventory.Create)
			inventoryGroup.POST("/import", managers, inventory.Import)
			inventoryGroup.PUT("/:id", managers, inventory.Update)
			inventoryGroup.POST("/:id/restock", managers, inventory.Restock)
			inventoryGroup.DELETE("/:id", admins, inventory.Delete)
		}
	}

	dashboard := handlers.NewDashboardHandler(services.Dashboard, services.Predictions, services.Optimizations, services.Alerts)
	{
		apiGroup.GET("/dashboard", dashboard.GetOverview)
		apiGroup.GET("/dashboard/summary", dashboard.GetSummary)
		apiGroup.GET("/predictions", dashboard.ListPredictions)
		apiGroup.GET("/predictions/history", dashboard.ListPredictionHistory)
		apiGroup.GET("/optimizations", dashboard.ListOptimizations)
		apiGroup.GET("/alerts", dashboard.ListAlerts)
		apiGroup.PATCH("/alerts/:id/read", dashboard.MarkAlertRead)
		apiGroup.PATCH("/alerts/:id/resolve", dashboard.ResolveAlert)
	}

	return router
}

// corsConfig answers every origin with "*" unless explicit origins are configured.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Client-Info", "Apikey", "X-Request-Id"},
		ExposeHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}

	origins, allowAll := normalizeAllowedOrigins(allowedOrigins)
	if allowAll || len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
