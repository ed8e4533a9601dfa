package dto

import (
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/catalogs/filial"
)

// FilialFields are the mutable fields of a filial.
type FilialFields struct {
	NodeRequest
	Matriz   bool             `json:"matriz"`
	Cnpj     *string          `json:"cnpj"`
	Email    *string          `json:"email"`
	Telefone *string          `json:"telefone" binding:"omitempty,max=20"`
	Endereco *entity.Endereco `json:"endereco"`
}

func (r *FilialFields) apply(f *filial.Filial) {
	f.Rename(r.Codigo, r.Nome, r.Descricao)
	f.Matriz = r.Matriz
	f.SetContato(r.Cnpj, r.Email)
	f.Telefone = r.Telefone
	f.Endereco = entity.Endereco{}
	if r.Endereco != nil {
		f.Endereco = *r.Endereco
		f.Endereco.Normalize()
	}
}

// CreateFilialRequest is the request body for creating a filial.
type CreateFilialRequest struct {
	FilialFields
	EmpresaID id.ID `json:"empresaId"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateFilialRequest) ToEntity() *filial.Filial {
	f := filial.NewFilial(r.EmpresaID, r.Codigo, r.Nome, r.Matriz)
	r.apply(f)
	return f
}

// UpdateFilialRequest is the request body for updating a filial. The empresa cannot change.
type UpdateFilialRequest struct {
	FilialFields
}

// ApplyTo replaces the mutable fields of an existing filial.
func (r *UpdateFilialRequest) ApplyTo(f *filial.Filial) *filial.Filial {
	r.apply(f)
	return f
}

// FilialResponse is the response DTO for a filial.
type FilialResponse struct {
	NodeResponse
	EmpresaID   id.ID            `json:"empresaId"`
	EmpresaNome string           `json:"empresaNome,omitempty"`
	Matriz      bool             `json:"matriz"`
	Cnpj        *string          `json:"cnpj,omitempty"`
	Email       *string          `json:"email,omitempty"`
	Telefone    *string          `json:"telefone,omitempty"`
	Endereco    *entity.Endereco `json:"endereco,omitempty"`
}

// FromFilial converts domain entity to response DTO.
func FromFilial(f *filial.Filial) FilialResponse {
	resp := FilialResponse{
		NodeResponse: FromNode(f.Node),
		EmpresaID:    f.EmpresaID,
		EmpresaNome:  f.EmpresaNome,
		Matriz:       f.Matriz,
		Cnpj:         f.Cnpj,
		Email:        f.Email,
		Telefone:     f.Telefone,
	}
	if !f.Endereco.IsZero() {
		endereco := f.Endereco
		resp.Endereco = &endereco
	}
	return resp
}
