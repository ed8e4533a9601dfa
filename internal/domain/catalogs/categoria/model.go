// Package categoria provides the Categoria catalog: a three-level tree per CentroCusto.
package categoria

import (
	"context"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// Levels of the category tree. Produtos attach to NivelFolha only.
const (
	NivelRaiz  = 1
	NivelFolha = 3
)

// Categoria is one node of the category tree. The tree is stored flat:
// children are found by querying categoria_pai_id.
type Categoria struct {
	entity.Node

	CentroCustoID  id.ID  `db:"centro_custo_id" json:"centroCustoId"`
	CategoriaPaiID *id.ID `db:"categoria_pai_id" json:"categoriaPaiId,omitempty"`

	// Nivel is 1, 2 or 3; level and parent are immutable after creation
	Nivel int `db:"nivel" json:"nivel"`

	// Resolved by the read view
	CentroCustoNome  string  `db:"centro_custo_nome" write:"-" json:"centroCustoNome,omitempty"`
	CategoriaPaiNome *string `db:"categoria_pai_nome" write:"-" json:"categoriaPaiNome,omitempty"`
	FilialID         id.ID   `db:"filial_id" write:"-" json:"filialId"`
	EmpresaID        id.ID   `db:"empresa_id" write:"-" json:"empresaId"`
}

// NewCategoria creates an active Categoria under centroCustoID.
func NewCategoria(centroCustoID id.ID, paiID *id.ID, nivel int, codigo, nome string, descricao *string) *Categoria {
	return &Categoria{
		Node:           entity.NewNode(codigo, nome, descricao),
		CentroCustoID:  centroCustoID,
		CategoriaPaiID: paiID,
		Nivel:          nivel,
	}
}

// IsFolha reports whether produtos may be attached to the category.
func (c *Categoria) IsFolha() bool {
	return c.Nivel == NivelFolha
}

// Validate implements entity.Validatable interface.
// It checks the level/parent shape; the parent's own level is checked against storage by the service.
func (c *Categoria) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	c.Node.ValidateInto(&fe)

	if id.IsNil(c.CentroCustoID) {
		fe.Add("centroCustoId", "centro de custo é obrigatório")
	}

	switch {
	case c.Nivel < NivelRaiz || c.Nivel > NivelFolha:
		fe.Add("nivel", "nível deve ser 1, 2 ou 3")
	case c.Nivel == NivelRaiz && c.CategoriaPaiID != nil:
		fe.Add("categoriaPaiId", "categorias de nível 1 não possuem categoria pai")
	case c.Nivel > NivelRaiz && (c.CategoriaPaiID == nil || id.IsNil(*c.CategoriaPaiID)):
		fe.Add("categoriaPaiId", "categorias de nível 2 ou 3 exigem categoria pai")
	}

	return fe.Err()
}
