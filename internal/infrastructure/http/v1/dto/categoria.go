package dto

import (
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs/categoria"
)

// CreateCategoriaRequest is the request body for creating a categoria.
// Level 1 categories have no parent; levels 2 and 3 require one.
type CreateCategoriaRequest struct {
	NodeRequest
	CentroCustoID  id.ID  `json:"centroCustoId"`
	CategoriaPaiID *id.ID `json:"categoriaPaiId"`
	Nivel          int    `json:"nivel"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCategoriaRequest) ToEntity() *categoria.Categoria {
	return categoria.NewCategoria(r.CentroCustoID, r.CategoriaPaiID, r.Nivel, r.Codigo, r.Nome, r.Descricao)
}

// CategoriaResponse is the response DTO for a categoria.
type CategoriaResponse struct {
	NodeResponse
	CentroCustoID    id.ID   `json:"centroCustoId"`
	CentroCustoNome  string  `json:"centroCustoNome,omitempty"`
	CategoriaPaiID   *id.ID  `json:"categoriaPaiId,omitempty"`
	CategoriaPaiNome *string `json:"categoriaPaiNome,omitempty"`
	Nivel            int     `json:"nivel"`
	FilialID         id.ID   `json:"filialId"`
	EmpresaID        id.ID   `json:"empresaId"`
}

// FromCategoria converts domain entity to response DTO.
func FromCategoria(c *categoria.Categoria) CategoriaResponse {
	return CategoriaResponse{
		NodeResponse:     FromNode(c.Node),
		CentroCustoID:    c.CentroCustoID,
		CentroCustoNome:  c.CentroCustoNome,
		CategoriaPaiID:   c.CategoriaPaiID,
		CategoriaPaiNome: c.CategoriaPaiNome,
		Nivel:            c.Nivel,
		FilialID:         c.FilialID,
		EmpresaID:        c.EmpresaID,
	}
}
