// Package agrupamento provides the Agrupamento catalog, the first cost-accounting level of a Filial.
package agrupamento

import (
	"context"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// Agrupamento groups sub-agrupamentos of one Filial.
type Agrupamento struct {
	entity.Node

	FilialID id.ID `db:"filial_id" json:"filialId"`

	// Resolved by the read view
	FilialNome string `db:"filial_nome" write:"-" json:"filialNome,omitempty"`
	EmpresaID  id.ID  `db:"empresa_id" write:"-" json:"empresaId"`
}

// NewAgrupamento creates an active Agrupamento under filialID.
func NewAgrupamento(filialID id.ID, codigo, nome string, descricao *string) *Agrupamento {
	return &Agrupamento{
		Node:     entity.NewNode(codigo, nome, descricao),
		FilialID: filialID,
	}
}

// Validate implements entity.Validatable interface.
func (a *Agrupamento) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	a.Node.ValidateInto(&fe)
	if id.IsNil(a.FilialID) {
		fe.Add("filialId", "filial é obrigatória")
	}
	return fe.Err()
}
