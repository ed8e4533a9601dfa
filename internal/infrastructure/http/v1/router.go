// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"retaguarda/internal/domain/audit"
	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
	"retaguarda/internal/infrastructure/http/v1/handlers"
	"retaguarda/internal/infrastructure/http/v1/middleware"
	"retaguarda/internal/infrastructure/metrics"
	"retaguarda/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Services are the lifecycle services of every kind
	Services *catalogs.Services

	// Audit serves the history endpoints; nil disables them
	Audit audit.Store

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation; nil installs a development admin caller
	JWTValidator middleware.JWTValidator

	// Health probes
	Health handlers.HealthConfig

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Health)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", metrics.Handler())

	// API v1
	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	} else {
		api.Use(middleware.DevUser())
	}

	registerCatalogRoutes(api, cfg)

	return router
}

// registerCatalogRoutes registers the hierarchy (cadastro) endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	s := cfg.Services
	baseHandler := handlers.NewBaseHandler()

	// --- EMPRESAS ---
	RegisterNodeRoutes(rg.Group("/empresas"),
		handlers.NewEmpresaHandler(baseHandler, s.Empresa, cfg.Audit), Permission(empresa.EntityName))

	// --- FILIAIS ---
	RegisterNodeRoutes(rg.Group("/filiais"),
		handlers.NewFilialHandler(baseHandler, s.Filial, cfg.Audit), Permission(filial.EntityName))

	// --- AGRUPAMENTOS ---
	RegisterNodeRoutes(rg.Group("/agrupamentos"),
		handlers.NewAgrupamentoHandler(baseHandler, s.Agrupamento, cfg.Audit), Permission(agrupamento.EntityName))

	// --- SUB-AGRUPAMENTOS ---
	RegisterNodeRoutes(rg.Group("/sub-agrupamentos"),
		handlers.NewSubAgrupamentoHandler(baseHandler, s.SubAgrupamento, cfg.Audit), Permission(subagrupamento.EntityName))

	// --- CENTROS DE CUSTO ---
	RegisterNodeRoutes(rg.Group("/centros-custo"),
		handlers.NewCentroCustoHandler(baseHandler, s.CentroCusto, cfg.Audit), Permission(centrocusto.EntityName))

	// --- CATEGORIAS ---
	{
		perm := Permission(categoria.EntityName)
		handler := handlers.NewCategoriaHandler(baseHandler, s.Categoria, cfg.Audit)
		group := rg.Group("/categorias")
		group.GET("/arvore", middleware.RequirePermission(perm+":read"), handler.Arvore)
		RegisterNodeRoutes(group, handler, perm)
	}

	// --- PRODUTOS ---
	{
		perm := Permission(produto.EntityName)
		handler := handlers.NewProdutoHandler(baseHandler, s.Produto, s.Ficha, cfg.Audit)
		group := rg.Group("/produtos")
		RegisterNodeRoutes(group, handler, perm)
		group.GET("/:id/ingredientes", middleware.RequirePermission(perm+":read"), handler.ListIngredientes)
		group.POST("/:id/ingredientes", middleware.RequirePermission(perm+":update"), handler.AddIngrediente)
		group.DELETE("/:id/ingredientes/:linkId", middleware.RequirePermission(perm+":update"), handler.RemoveIngrediente)
	}
}
