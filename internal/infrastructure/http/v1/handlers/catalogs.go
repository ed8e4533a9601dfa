package handlers

import (
	"github.com/gin-gonic/gin"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/domain/audit"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
	"retaguarda/internal/infrastructure/http/v1/dto"
)

var (
	filterEmpresa        = QueryFilter{Param: "empresaId", Column: "empresa_id"}
	filterFilial         = QueryFilter{Param: "filialId", Column: "filial_id"}
	filterAgrupamento    = QueryFilter{Param: "agrupamentoId", Column: "agrupamento_id"}
	filterSubAgrupamento = QueryFilter{Param: "subAgrupamentoId", Column: "sub_agrupamento_id"}
	filterCentroCusto    = QueryFilter{Param: "centroCustoId", Column: "centro_custo_id"}
	filterCategoria      = QueryFilter{Param: "categoriaId", Column: "categoria_id"}

	scopeTenant = ClaimScope{EmpresaColumn: "empresa_id", FilialColumn: "filial_id"}
)

// EmpresaHandler handles /empresas.
type EmpresaHandler = NodeHandler[*empresa.Empresa, dto.EmpresaRequest, dto.EmpresaRequest]

// NewEmpresaHandler creates the empresa handler. Non-admin callers only see their own empresa.
func NewEmpresaHandler(base *BaseHandler, svc *empresa.Service, store audit.Store) *EmpresaHandler {
	return NewNodeHandler(base, NodeHandlerConfig[*empresa.Empresa, dto.EmpresaRequest, dto.EmpresaRequest]{
		Service:      svc,
		EntityName:   empresa.EntityName,
		Scope:        ClaimScope{EmpresaColumn: "id"},
		Audit:        store,
		MapCreateDTO: func(req dto.EmpresaRequest) *empresa.Empresa { return req.ToEntity() },
		MapUpdateDTO: func(req dto.EmpresaRequest, e *empresa.Empresa) *empresa.Empresa { return req.ApplyTo(e) },
		MapToDTO:     func(e *empresa.Empresa) any { return dto.FromEmpresa(e) },
	})
}

// FilialHandler handles /filiais.
type FilialHandler = NodeHandler[*filial.Filial, dto.CreateFilialRequest, dto.UpdateFilialRequest]

// NewFilialHandler creates the filial handler.
func NewFilialHandler(base *BaseHandler, svc *filial.Service, store audit.Store) *FilialHandler {
	return NewNodeHandler(base, NodeHandlerConfig[*filial.Filial, dto.CreateFilialRequest, dto.UpdateFilialRequest]{
		Service:      svc,
		EntityName:   filial.EntityName,
		Filters:      []QueryFilter{filterEmpresa},
		Scope:        ClaimScope{EmpresaColumn: "empresa_id", FilialColumn: "id"},
		Audit:        store,
		MapCreateDTO: func(req dto.CreateFilialRequest) *filial.Filial { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateFilialRequest, f *filial.Filial) *filial.Filial { return req.ApplyTo(f) },
		MapToDTO:     func(f *filial.Filial) any { return dto.FromFilial(f) },
	})
}

// AgrupamentoHandler handles /agrupamentos.
type AgrupamentoHandler = NodeHandler[*agrupamento.Agrupamento, dto.CreateAgrupamentoRequest, dto.UpdateNodeRequest]

// NewAgrupamentoHandler creates the agrupamento handler.
func NewAgrupamentoHandler(base *BaseHandler, svc *agrupamento.Service, store audit.Store) *AgrupamentoHandler {
	return NewNodeHandler(base, NodeHandlerConfig[*agrupamento.Agrupamento, dto.CreateAgrupamentoRequest, dto.UpdateNodeRequest]{
		Service:      svc,
		EntityName:   agrupamento.EntityName,
		Filters:      []QueryFilter{filterEmpresa, filterFilial},
		Scope:        scopeTenant,
		Audit:        store,
		MapCreateDTO: func(req dto.CreateAgrupamentoRequest) *agrupamento.Agrupamento { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateNodeRequest, a *agrupamento.Agrupamento) *agrupamento.Agrupamento {
			a.Rename(req.Codigo, req.Nome, req.Descricao)
			return a
		},
		MapToDTO: func(a *agrupamento.Agrupamento) any { return dto.FromAgrupamento(a) },
	})
}

// SubAgrupamentoHandler handles /sub-agrupamentos.
type SubAgrupamentoHandler = NodeHandler[*subagrupamento.SubAgrupamento, dto.CreateSubAgrupamentoRequest, dto.UpdateNodeRequest]

// NewSubAgrupamentoHandler creates the sub-agrupamento handler.
func NewSubAgrupamentoHandler(base *BaseHandler, svc *subagrupamento.Service, store audit.Store) *SubAgrupamentoHandler {
	return NewNodeHandler(base, NodeHandlerConfig[*subagrupamento.SubAgrupamento, dto.CreateSubAgrupamentoRequest, dto.UpdateNodeRequest]{
		Service:      svc,
		EntityName:   subagrupamento.EntityName,
		Filters:      []QueryFilter{filterEmpresa, filterFilial, filterAgrupamento},
		Scope:        scopeTenant,
		Audit:        store,
		MapCreateDTO: func(req dto.CreateSubAgrupamentoRequest) *subagrupamento.SubAgrupamento { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateNodeRequest, s *subagrupamento.SubAgrupamento) *subagrupamento.SubAgrupamento {
			s.Rename(req.Codigo, req.Nome, req.Descricao)
			return s
		},
		MapToDTO: func(s *subagrupamento.SubAgrupamento) any { return dto.FromSubAgrupamento(s) },
	})
}

// CentroCustoHandler handles /centros-custo.
type CentroCustoHandler = NodeHandler[*centrocusto.CentroCusto, dto.CreateCentroCustoRequest, dto.UpdateNodeRequest]

// NewCentroCustoHandler creates the centro de custo handler.
func NewCentroCustoHandler(base *BaseHandler, svc *centrocusto.Service, store audit.Store) *CentroCustoHandler {
	return NewNodeHandler(base, NodeHandlerConfig[*centrocusto.CentroCusto, dto.CreateCentroCustoRequest, dto.UpdateNodeRequest]{
		Service:      svc,
		EntityName:   centrocusto.EntityName,
		Filters:      []QueryFilter{filterEmpresa, filterFilial, filterAgrupamento, filterSubAgrupamento},
		Scope:        scopeTenant,
		Audit:        store,
		MapCreateDTO: func(req dto.CreateCentroCustoRequest) *centrocusto.CentroCusto { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateNodeRequest, c *centrocusto.CentroCusto) *centrocusto.CentroCusto {
			c.Rename(req.Codigo, req.Nome, req.Descricao)
			return c
		},
		MapToDTO: func(c *centrocusto.CentroCusto) any { return dto.FromCentroCusto(c) },
	})
}

// CategoriaHandler handles /categorias and the nested tree projection.
type CategoriaHandler struct {
	*NodeHandler[*categoria.Categoria, dto.CreateCategoriaRequest, dto.UpdateNodeRequest]
	service *categoria.Service
}

// NewCategoriaHandler creates the categoria handler.
func NewCategoriaHandler(base *BaseHandler, svc *categoria.Service, store audit.Store) *CategoriaHandler {
	node := NewNodeHandler(base, NodeHandlerConfig[*categoria.Categoria, dto.CreateCategoriaRequest, dto.UpdateNodeRequest]{
		Service:      svc,
		EntityName:   categoria.EntityName,
		Filters:      []QueryFilter{filterEmpresa, filterFilial, filterCentroCusto},
		Scope:        scopeTenant,
		Audit:        store,
		MapCreateDTO: func(req dto.CreateCategoriaRequest) *categoria.Categoria { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateNodeRequest, c *categoria.Categoria) *categoria.Categoria {
			c.Rename(req.Codigo, req.Nome, req.Descricao)
			return c
		},
		MapToDTO: func(c *categoria.Categoria) any { return dto.FromCategoria(c) },
	})
	return &CategoriaHandler{NodeHandler: node, service: svc}
}

// Arvore handles GET /categorias/arvore?centroCustoId= - the nested tree of a cost center.
func (h *CategoriaHandler) Arvore(c *gin.Context) {
	centroCustoID, ok := h.QueryID(c, "centroCustoId")
	if !ok {
		return
	}
	if centroCustoID == nil {
		h.Error(c, apperror.NewFieldValidation("centroCustoId", "centro de custo é obrigatório"))
		return
	}

	arvore, err := h.service.Arvore(c.Request.Context(), *centroCustoID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(arvore) == 0 {
		h.NoContent(c)
		return
	}

	h.OK(c, dto.ItemsResponse{Items: arvore})
}

// ProdutoHandler handles /produtos and the ficha técnica sub-resource.
type ProdutoHandler struct {
	*NodeHandler[*produto.Produto, dto.CreateProdutoRequest, dto.UpdateProdutoRequest]
	ficha *produto.FichaService
}

// NewProdutoHandler creates the produto handler.
func NewProdutoHandler(base *BaseHandler, svc *produto.Service, ficha *produto.FichaService, store audit.Store) *ProdutoHandler {
	node := NewNodeHandler(base, NodeHandlerConfig[*produto.Produto, dto.CreateProdutoRequest, dto.UpdateProdutoRequest]{
		Service:      svc,
		EntityName:   produto.EntityName,
		Filters:      []QueryFilter{filterEmpresa, filterFilial, filterCentroCusto, filterCategoria},
		Scope:        scopeTenant,
		Audit:        store,
		MapCreateDTO: func(req dto.CreateProdutoRequest) *produto.Produto { return req.ToEntity() },
		MapUpdateDTO: func(req dto.UpdateProdutoRequest, p *produto.Produto) *produto.Produto { return req.ApplyTo(p) },
		MapToDTO:     func(p *produto.Produto) any { return dto.FromProduto(p) },
	})
	return &ProdutoHandler{NodeHandler: node, ficha: ficha}
}

// ListIngredientes handles GET /produtos/:id/ingredientes.
func (h *ProdutoHandler) ListIngredientes(c *gin.Context) {
	produtoID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	links, err := h.ficha.List(c.Request.Context(), produtoID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(links) == 0 {
		h.NoContent(c)
		return
	}

	items := make([]dto.IngredienteResponse, len(links))
	for i, link := range links {
		items[i] = dto.FromIngrediente(link)
	}
	h.OK(c, dto.ItemsResponse{Items: items})
}

// AddIngrediente handles POST /produtos/:id/ingredientes.
func (h *ProdutoHandler) AddIngrediente(c *gin.Context) {
	produtoID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.AddIngredienteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	link, err := h.ficha.Add(c.Request.Context(), produtoID, req.IngredienteID, req.Quantidade, req.UnidadeMedida)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromIngrediente(link))
}

// RemoveIngrediente handles DELETE /produtos/:id/ingredientes/:linkId.
func (h *ProdutoHandler) RemoveIngrediente(c *gin.Context) {
	produtoID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	linkID, ok := h.ParamID(c, "linkId")
	if !ok {
		return
	}

	if err := h.ficha.Remove(c.Request.Context(), produtoID, linkID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
