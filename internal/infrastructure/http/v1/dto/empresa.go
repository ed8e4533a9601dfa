package dto

import (
	"retaguarda/internal/core/entity"
	"retaguarda/internal/domain/catalogs/empresa"
)

// EmpresaRequest is the request body for creating or updating an empresa.
type EmpresaRequest struct {
	NodeRequest
	Cnpj     string          `json:"cnpj" binding:"required"`
	Email    string          `json:"email" binding:"required"`
	Telefone *string         `json:"telefone" binding:"omitempty,max=20"`
	Endereco entity.Endereco `json:"endereco"`
}

// ToEntity converts DTO to domain entity.
func (r *EmpresaRequest) ToEntity() *empresa.Empresa {
	e := empresa.NewEmpresa(r.Codigo, r.Nome, r.Cnpj, r.Email, r.Endereco)
	e.Descricao = r.Descricao
	e.Telefone = r.Telefone
	return e
}

// ApplyTo replaces the mutable fields of an existing empresa.
func (r *EmpresaRequest) ApplyTo(e *empresa.Empresa) *empresa.Empresa {
	e.Rename(r.Codigo, r.Nome, r.Descricao)
	e.SetContato(r.Cnpj, r.Email)
	e.Telefone = r.Telefone
	e.Endereco = r.Endereco
	e.Endereco.Normalize()
	return e
}

// EmpresaResponse is the response DTO for an empresa.
type EmpresaResponse struct {
	NodeResponse
	Cnpj     string          `json:"cnpj"`
	Email    string          `json:"email"`
	Telefone *string         `json:"telefone,omitempty"`
	Endereco entity.Endereco `json:"endereco"`
}

// FromEmpresa converts domain entity to response DTO.
func FromEmpresa(e *empresa.Empresa) EmpresaResponse {
	return EmpresaResponse{
		NodeResponse: FromNode(e.Node),
		Cnpj:         e.Cnpj,
		Email:        e.Email,
		Telefone:     e.Telefone,
		Endereco:     e.Endereco,
	}
}
