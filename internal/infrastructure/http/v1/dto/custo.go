package dto

import (
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
)

// UpdateNodeRequest is the update body of kinds whose only mutable fields are codigo, nome and descricao.
type UpdateNodeRequest struct {
	NodeRequest
}

// --- Agrupamento ---

// CreateAgrupamentoRequest is the request body for creating an agrupamento.
type CreateAgrupamentoRequest struct {
	NodeRequest
	FilialID id.ID `json:"filialId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAgrupamentoRequest) ToEntity() *agrupamento.Agrupamento {
	return agrupamento.NewAgrupamento(r.FilialID, r.Codigo, r.Nome, r.Descricao)
}

// AgrupamentoResponse is the response DTO for an agrupamento.
type AgrupamentoResponse struct {
	NodeResponse
	FilialID   id.ID  `json:"filialId"`
	FilialNome string `json:"filialNome,omitempty"`
	EmpresaID  id.ID  `json:"empresaId"`
}

// FromAgrupamento converts domain entity to response DTO.
func FromAgrupamento(a *agrupamento.Agrupamento) AgrupamentoResponse {
	return AgrupamentoResponse{
		NodeResponse: FromNode(a.Node),
		FilialID:     a.FilialID,
		FilialNome:   a.FilialNome,
		EmpresaID:    a.EmpresaID,
	}
}

// --- SubAgrupamento ---

// CreateSubAgrupamentoRequest is the request body for creating a sub-agrupamento.
type CreateSubAgrupamentoRequest struct {
	NodeRequest
	AgrupamentoID id.ID `json:"agrupamentoId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSubAgrupamentoRequest) ToEntity() *subagrupamento.SubAgrupamento {
	return subagrupamento.NewSubAgrupamento(r.AgrupamentoID, r.Codigo, r.Nome, r.Descricao)
}

// SubAgrupamentoResponse is the response DTO for a sub-agrupamento.
type SubAgrupamentoResponse struct {
	NodeResponse
	AgrupamentoID   id.ID  `json:"agrupamentoId"`
	AgrupamentoNome string `json:"agrupamentoNome,omitempty"`
	FilialID        id.ID  `json:"filialId"`
	EmpresaID       id.ID  `json:"empresaId"`
}

// FromSubAgrupamento converts domain entity to response DTO.
func FromSubAgrupamento(s *subagrupamento.SubAgrupamento) SubAgrupamentoResponse {
	return SubAgrupamentoResponse{
		NodeResponse:    FromNode(s.Node),
		AgrupamentoID:   s.AgrupamentoID,
		AgrupamentoNome: s.AgrupamentoNome,
		FilialID:        s.FilialID,
		EmpresaID:       s.EmpresaID,
	}
}

// --- CentroCusto ---

// CreateCentroCustoRequest is the request body for creating a centro de custo.
type CreateCentroCustoRequest struct {
	NodeRequest
	SubAgrupamentoID id.ID `json:"subAgrupamentoId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCentroCustoRequest) ToEntity() *centrocusto.CentroCusto {
	return centrocusto.NewCentroCusto(r.SubAgrupamentoID, r.Codigo, r.Nome, r.Descricao)
}

// CentroCustoResponse is the response DTO for a centro de custo.
type CentroCustoResponse struct {
	NodeResponse
	SubAgrupamentoID   id.ID  `json:"subAgrupamentoId"`
	SubAgrupamentoNome string `json:"subAgrupamentoNome,omitempty"`
	AgrupamentoID      id.ID  `json:"agrupamentoId"`
	FilialID           id.ID  `json:"filialId"`
	EmpresaID          id.ID  `json:"empresaId"`
}

// FromCentroCusto converts domain entity to response DTO.
func FromCentroCusto(c *centrocusto.CentroCusto) CentroCustoResponse {
	return CentroCustoResponse{
		NodeResponse:       FromNode(c.Node),
		SubAgrupamentoID:   c.SubAgrupamentoID,
		SubAgrupamentoNome: c.SubAgrupamentoNome,
		AgrupamentoID:      c.AgrupamentoID,
		FilialID:           c.FilialID,
		EmpresaID:          c.EmpresaID,
	}
}
