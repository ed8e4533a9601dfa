package handlers

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"retaguarda/internal/core/apperror"
	appctx "retaguarda/internal/core/context"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/audit"
	domainFilter "retaguarda/internal/domain/filter"
	"retaguarda/internal/infrastructure/http/v1/dto"
)

const maxListLimit = 500

// NodeService is the lifecycle surface a NodeHandler drives.
// *domain.HierarchyService satisfies it for every kind.
type NodeService[T domain.Node] interface {
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	GetByID(ctx context.Context, id id.ID) (T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id id.ID) error
}

// QueryFilter binds an optional id query parameter ("empresaId") to a read-view column ("empresa_id").
type QueryFilter struct {
	Param  string
	Column string
}

// ClaimScope names the columns that bound list queries of non-admin callers.
// An empty column is not scoped.
type ClaimScope struct {
	EmpresaColumn string
	FilialColumn  string
}

// Apply appends the caller's empresa/filial restriction to f.
func (s ClaimScope) Apply(user *appctx.UserContext, f *domain.ListFilter) error {
	if user == nil || user.IsAdmin {
		return nil
	}

	if s.EmpresaColumn != "" {
		empresaID, err := id.Parse(user.EmpresaID)
		if err != nil {
			return apperror.NewForbidden("usuário sem empresa vinculada")
		}
		f.AdvancedFilters = append(f.AdvancedFilters, domainFilter.Eq(s.EmpresaColumn, empresaID))
	}

	if s.FilialColumn != "" && user.FilialID != "" {
		filialID, err := id.Parse(user.FilialID)
		if err != nil {
			return apperror.NewForbidden("filial vinculada inválida")
		}
		f.AdvancedFilters = append(f.AdvancedFilters, domainFilter.Eq(s.FilialColumn, filialID))
	}
	return nil
}

// NodeHandler provides generic HTTP handlers for one hierarchy kind.
type NodeHandler[T domain.Node, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    NodeService[T]
	entityName string
	filters    []QueryFilter
	scope      ClaimScope
	audit      audit.Store

	// Mapper functions
	mapCreateDTO func(dto CreateDTO) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
	mapToDTO     func(entity T) any
}

// NodeHandlerConfig configures the node handler.
type NodeHandlerConfig[T domain.Node, CreateDTO any, UpdateDTO any] struct {
	Service    NodeService[T]
	EntityName string

	// Filters are the ancestor id query parameters accepted by List
	Filters []QueryFilter
	Scope   ClaimScope

	// Audit serves GET /:id/auditoria; nil disables it
	Audit audit.Store

	MapCreateDTO func(dto CreateDTO) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
	MapToDTO     func(entity T) any
}

// NewNodeHandler creates a new node handler.
func NewNodeHandler[T domain.Node, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg NodeHandlerConfig[T, CreateDTO, UpdateDTO],
) *NodeHandler[T, CreateDTO, UpdateDTO] {
	return &NodeHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		filters:      cfg.Filters,
		scope:        cfg.Scope,
		audit:        cfg.Audit,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// List handles GET /{kind} - list active nodes with filtering and pagination.
// An empty page answers 204.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(result.Items) == 0 {
		h.NoContent(c)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = h.mapToDTO(item)
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

func (h *NodeHandler[T, CreateDTO, UpdateDTO]) parseListFilter(c *gin.Context) (domain.ListFilter, bool) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.OrderBy = c.Query("orderBy")
	filter.Offset = max(h.ParseIntQuery(c, "offset", 0), 0)
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	parentID, ok := h.QueryID(c, "parentId")
	if !ok {
		return filter, false
	}
	filter.ParentID = parentID

	for _, qf := range h.filters {
		value, ok := h.QueryID(c, qf.Param)
		if !ok {
			return filter, false
		}
		if value != nil {
			filter.AdvancedFilters = append(filter.AdvancedFilters, domainFilter.Eq(qf.Column, *value))
		}
	}

	if raw := c.Query("filter"); raw != "" {
		var advanced []domainFilter.Item
		if err := json.Unmarshal([]byte(raw), &advanced); err != nil {
			h.Error(c, apperror.NewFieldValidation("filter", "formato de filtro inválido (JSON esperado)"))
			return filter, false
		}
		filter.AdvancedFilters = append(filter.AdvancedFilters, advanced...)
	}

	if err := h.scope.Apply(h.User(c), &filter); err != nil {
		h.Error(c, err)
		return filter, false
	}
	return filter, true
}

// Get handles GET /{kind}/:id - get single active node.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(entity))
}

// Create handles POST /{kind} - create a node and answer the re-read state.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), h.mapCreateDTO(req))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.mapToDTO(created))
}

// Update handles PUT /{kind}/:id - replace the mutable fields of a node.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Update(ctx, h.mapUpdateDTO(req, existing))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(updated))
}

// Delete handles DELETE /{kind}/:id - soft delete a node without active children.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Audited reports whether History is served.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) Audited() bool {
	return h.audit != nil
}

// History handles GET /{kind}/:id/auditoria - newest audit entries first.
func (h *NodeHandler[T, CreateDTO, UpdateDTO]) History(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	entries, err := h.audit.History(c.Request.Context(), h.entityName, entityID, limit)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	if len(entries) == 0 {
		h.NoContent(c)
		return
	}

	h.OK(c, dto.ItemsResponse{Items: entries})
}
