// Package subagrupamento provides the SubAgrupamento catalog.
package subagrupamento

import (
	"context"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// SubAgrupamento is the second cost-accounting level, child of an Agrupamento.
type SubAgrupamento struct {
	entity.Node

	AgrupamentoID id.ID `db:"agrupamento_id" json:"agrupamentoId"`

	// Resolved by the read view
	AgrupamentoNome string `db:"agrupamento_nome" write:"-" json:"agrupamentoNome,omitempty"`
	FilialID        id.ID  `db:"filial_id" write:"-" json:"filialId"`
	EmpresaID       id.ID  `db:"empresa_id" write:"-" json:"empresaId"`
}

// NewSubAgrupamento creates an active SubAgrupamento under agrupamentoID.
func NewSubAgrupamento(agrupamentoID id.ID, codigo, nome string, descricao *string) *SubAgrupamento {
	return &SubAgrupamento{
		Node:          entity.NewNode(codigo, nome, descricao),
		AgrupamentoID: agrupamentoID,
	}
}

// Validate implements entity.Validatable interface.
func (s *SubAgrupamento) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	s.Node.ValidateInto(&fe)
	if id.IsNil(s.AgrupamentoID) {
		fe.Add("agrupamentoId", "agrupamento é obrigatório")
	}
	return fe.Err()
}
