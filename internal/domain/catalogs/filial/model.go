// Package filial provides the Filial catalog (branches of an Empresa).
package filial

import (
	"context"
	"strings"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// Filial is a branch of an Empresa. At most one active Filial per Empresa is the Matriz.
type Filial struct {
	entity.Node
	entity.Endereco

	EmpresaID id.ID `db:"empresa_id" json:"empresaId"`

	Cnpj     *string `db:"cnpj" json:"cnpj,omitempty"`
	Email    *string `db:"email" json:"email,omitempty"`
	Telefone *string `db:"telefone" json:"telefone,omitempty"`

	// Matriz flags the headquarters
	Matriz bool `db:"matriz" json:"matriz"`

	EmpresaNome string `db:"empresa_nome" write:"-" json:"empresaNome,omitempty"`
}

// NewFilial creates an active Filial under empresaID.
func NewFilial(empresaID id.ID, codigo, nome string, matriz bool) *Filial {
	return &Filial{
		Node:      entity.NewNode(codigo, nome, nil),
		EmpresaID: empresaID,
		Matriz:    matriz,
	}
}

// SetContato normalizes and assigns the optional tax id and e-mail.
func (f *Filial) SetContato(cnpj, email *string) {
	f.Cnpj = nil
	if cnpj != nil {
		if n := entity.NormalizeCnpj(*cnpj); n != "" {
			f.Cnpj = &n
		}
	}
	f.Email = nil
	if email != nil {
		if e := strings.TrimSpace(*email); e != "" {
			f.Email = &e
		}
	}
}

// Validate implements entity.Validatable interface.
// The address is optional but, when present, must be complete.
func (f *Filial) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	f.Node.ValidateInto(&fe)

	if id.IsNil(f.EmpresaID) {
		fe.Add("empresaId", "empresa é obrigatória")
	}
	if f.Cnpj != nil && !entity.ValidCnpj(*f.Cnpj) {
		fe.Add("cnpj", "cnpj deve ter 14 dígitos")
	}
	if f.Email != nil && !entity.IsEmail(*f.Email) {
		fe.Add("email", "email inválido")
	}
	if !f.Endereco.IsZero() {
		f.Endereco.ValidateInto(&fe)
	}

	return fe.Err()
}
