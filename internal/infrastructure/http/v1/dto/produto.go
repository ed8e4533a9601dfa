package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs/produto"
)

// ProdutoFields are the mutable fields of a produto.
type ProdutoFields struct {
	NodeRequest
	Preco          decimal.Decimal `json:"preco"`
	ProdutoVenda   bool            `json:"produtoVenda"`
	ProdutoEstoque bool            `json:"produtoEstoque"`
	UnidadeMedida  *string         `json:"unidadeMedida" binding:"omitempty,max=10"`
}

func (r *ProdutoFields) apply(p *produto.Produto) {
	p.Rename(r.Codigo, r.Nome, r.Descricao)
	p.Preco = r.Preco
	p.ProdutoVenda = r.ProdutoVenda
	p.ProdutoEstoque = r.ProdutoEstoque
	p.UnidadeMedida = r.UnidadeMedida
}

// CreateProdutoRequest is the request body for creating a produto.
type CreateProdutoRequest struct {
	ProdutoFields
	CategoriaID id.ID `json:"categoriaId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProdutoRequest) ToEntity() *produto.Produto {
	p := produto.NewProduto(r.CategoriaID, r.Codigo, r.Nome, r.Preco, r.ProdutoVenda, r.ProdutoEstoque)
	r.apply(p)
	return p
}

// UpdateProdutoRequest is the request body for updating a produto. The categoria cannot change.
type UpdateProdutoRequest struct {
	ProdutoFields
}

// ApplyTo replaces the mutable fields of an existing produto.
func (r *UpdateProdutoRequest) ApplyTo(p *produto.Produto) *produto.Produto {
	r.apply(p)
	return p
}

// ProdutoResponse is the response DTO for a produto.
type ProdutoResponse struct {
	NodeResponse
	CategoriaID    id.ID           `json:"categoriaId"`
	CategoriaNome  string          `json:"categoriaNome,omitempty"`
	CentroCustoID  id.ID           `json:"centroCustoId"`
	FilialID       id.ID           `json:"filialId"`
	EmpresaID      id.ID           `json:"empresaId"`
	Preco          decimal.Decimal `json:"preco"`
	ProdutoVenda   bool            `json:"produtoVenda"`
	ProdutoEstoque bool            `json:"produtoEstoque"`
	UnidadeMedida  *string         `json:"unidadeMedida,omitempty"`
}

// FromProduto converts domain entity to response DTO.
func FromProduto(p *produto.Produto) ProdutoResponse {
	return ProdutoResponse{
		NodeResponse:   FromNode(p.Node),
		CategoriaID:    p.CategoriaID,
		CategoriaNome:  p.CategoriaNome,
		CentroCustoID:  p.CentroCustoID,
		FilialID:       p.FilialID,
		EmpresaID:      p.EmpresaID,
		Preco:          p.Preco,
		ProdutoVenda:   p.ProdutoVenda,
		ProdutoEstoque: p.ProdutoEstoque,
		UnidadeMedida:  p.UnidadeMedida,
	}
}

// --- Ficha técnica ---

// AddIngredienteRequest is the request body for linking an ingredient to a produto.
type AddIngredienteRequest struct {
	IngredienteID id.ID           `json:"ingredienteId"`
	Quantidade    decimal.Decimal `json:"quantidade"`
	UnidadeMedida *string         `json:"unidadeMedida" binding:"omitempty,max=10"`
}

// IngredienteResponse is the response DTO for one ficha técnica line.
type IngredienteResponse struct {
	ID                id.ID           `json:"id"`
	ProdutoID         id.ID           `json:"produtoId"`
	IngredienteID     id.ID           `json:"ingredienteId"`
	IngredienteCodigo string          `json:"ingredienteCodigo,omitempty"`
	IngredienteNome   string          `json:"ingredienteNome,omitempty"`
	Quantidade        decimal.Decimal `json:"quantidade"`
	UnidadeMedida     *string         `json:"unidadeMedida,omitempty"`
	DataCriacao       time.Time       `json:"dataCriacao"`
}

// FromIngrediente converts domain entity to response DTO.
func FromIngrediente(i *produto.Ingrediente) IngredienteResponse {
	return IngredienteResponse{
		ID:                i.ID,
		ProdutoID:         i.ProdutoID,
		IngredienteID:     i.IngredienteID,
		IngredienteCodigo: i.IngredienteCodigo,
		IngredienteNome:   i.IngredienteNome,
		Quantidade:        i.Quantidade,
		UnidadeMedida:     i.UnidadeMedida,
		DataCriacao:       i.DataCriacao,
	}
}
