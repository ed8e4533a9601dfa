// Package centrocusto provides the CentroCusto catalog.
package centrocusto

import (
	"context"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// CentroCusto is the third cost-accounting level; it owns a category tree.
type CentroCusto struct {
	entity.Node

	SubAgrupamentoID id.ID `db:"sub_agrupamento_id" json:"subAgrupamentoId"`

	// Resolved by the read view
	SubAgrupamentoNome string `db:"sub_agrupamento_nome" write:"-" json:"subAgrupamentoNome,omitempty"`
	AgrupamentoID      id.ID  `db:"agrupamento_id" write:"-" json:"agrupamentoId"`
	FilialID           id.ID  `db:"filial_id" write:"-" json:"filialId"`
	EmpresaID          id.ID  `db:"empresa_id" write:"-" json:"empresaId"`
}

// NewCentroCusto creates an active CentroCusto under subAgrupamentoID.
func NewCentroCusto(subAgrupamentoID id.ID, codigo, nome string, descricao *string) *CentroCusto {
	return &CentroCusto{
		Node:             entity.NewNode(codigo, nome, descricao),
		SubAgrupamentoID: subAgrupamentoID,
	}
}

// Validate implements entity.Validatable interface.
func (c *CentroCusto) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	c.Node.ValidateInto(&fe)
	if id.IsNil(c.SubAgrupamentoID) {
		fe.Add("subAgrupamentoId", "sub-agrupamento é obrigatório")
	}
	return fe.Err()
}
