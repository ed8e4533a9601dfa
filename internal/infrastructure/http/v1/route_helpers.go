package v1

import (
	"github.com/gin-gonic/gin"

	"retaguarda/internal/infrastructure/http/v1/middleware"
)

// NodeRouteHandler defines the interface for hierarchy handlers.
// All kind handlers must implement these methods.
type NodeRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// AuditRouteHandler is an optional interface for handlers that serve audit history.
type AuditRouteHandler interface {
	Audited() bool
	History(c *gin.Context)
}

// RegisterNodeRoutes registers standard CRUD routes for a hierarchy kind.
// If the handler also implements AuditRouteHandler with a store, GET /:id/auditoria is registered.
//
// Usage:
//
//	handler := handlers.NewAgrupamentoHandler(base, services.Agrupamento, cfg.Audit)
//	RegisterNodeRoutes(api.Group("/agrupamentos"), handler, "cadastro:agrupamento")
func RegisterNodeRoutes(group *gin.RouterGroup, handler NodeRouteHandler, permission string) {
	group.GET("", middleware.RequirePermission(permission+":read"), handler.List)
	group.POST("", middleware.RequirePermission(permission+":create"), handler.Create)
	group.GET("/:id", middleware.RequirePermission(permission+":read"), handler.Get)
	group.PUT("/:id", middleware.RequirePermission(permission+":update"), handler.Update)
	group.DELETE("/:id", middleware.RequirePermission(permission+":delete"), handler.Delete)

	if auditHandler, ok := handler.(AuditRouteHandler); ok && auditHandler.Audited() {
		group.GET("/:id/auditoria", middleware.RequirePermission(permission+":read"), auditHandler.History)
	}
}

// Permission returns the permission prefix of a kind ("cadastro:empresa").
func Permission(entityName string) string {
	return "cadastro:" + entityName
}
