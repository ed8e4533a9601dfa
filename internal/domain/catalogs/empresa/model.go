// Package empresa provides the Empresa catalog, the root of every hierarchy.
package empresa

import (
	"context"
	"strings"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
)

// Empresa is a tenant-root company.
type Empresa struct {
	entity.Node
	entity.Endereco

	// Cnpj is stored normalized to 14 digits, unique among active empresas
	Cnpj string `db:"cnpj" json:"cnpj"`

	// Email is unique among active empresas, compared case-insensitively
	Email string `db:"email" json:"email"`

	Telefone *string `db:"telefone" json:"telefone,omitempty"`
}

// NewEmpresa creates an active Empresa with normalized identifiers.
func NewEmpresa(codigo, nome, cnpj, email string, endereco entity.Endereco) *Empresa {
	e := &Empresa{
		Node:     entity.NewNode(codigo, nome, nil),
		Endereco: endereco,
	}
	e.SetContato(cnpj, email)
	e.Endereco.Normalize()
	return e
}

// SetContato normalizes and assigns the tax id and e-mail.
func (e *Empresa) SetContato(cnpj, email string) {
	e.Cnpj = entity.NormalizeCnpj(cnpj)
	e.Email = strings.TrimSpace(email)
}

// Validate implements entity.Validatable interface.
func (e *Empresa) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	e.Node.ValidateInto(&fe)
	e.Endereco.ValidateInto(&fe)

	if e.Cnpj == "" {
		fe.Add("cnpj", "cnpj é obrigatório")
	} else if !entity.ValidCnpj(e.Cnpj) {
		fe.Add("cnpj", "cnpj deve ter 14 dígitos")
	}
	if e.Email == "" {
		fe.Add("email", "email é obrigatório")
	} else if !entity.IsEmail(e.Email) {
		fe.Add("email", "email inválido")
	}

	return fe.Err()
}
