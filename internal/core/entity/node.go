package entity

import (
	"context"
	"strings"

	"retaguarda/internal/core/apperror"
)

// Node is the common shape of every level of the catalog hierarchy
// (Empresa, Filial, Agrupamento, SubAgrupamento, CentroCusto, Categoria, Produto).
type Node struct {
	BaseEntity

	// Codigo is unique among active siblings of the same parent scope
	Codigo string `db:"codigo" json:"codigo"`

	// Nome is unique among active siblings of the same parent scope
	Nome string `db:"nome" json:"nome"`

	Descricao *string `db:"descricao" json:"descricao,omitempty"`
}

// NewNode creates an active Node with a generated ID.
func NewNode(codigo, nome string, descricao *string) Node {
	return Node{
		BaseEntity: NewBaseEntity(),
		Codigo:     strings.TrimSpace(codigo),
		Nome:       strings.TrimSpace(nome),
		Descricao:  descricao,
	}
}

// GetCodigo returns the code.
func (n *Node) GetCodigo() string { return n.Codigo }

// GetNome returns the display name.
func (n *Node) GetNome() string { return n.Nome }

// Rename replaces the mutable fields of the node.
func (n *Node) Rename(codigo, nome string, descricao *string) {
	n.Codigo = strings.TrimSpace(codigo)
	n.Nome = strings.TrimSpace(nome)
	n.Descricao = descricao
}

// ValidateInto records the common field errors into fe.
// Kind-specific Validate methods call it first and then add their own fields.
func (n *Node) ValidateInto(fe *apperror.FieldErrors) {
	if strings.TrimSpace(n.Codigo) == "" {
		fe.Add("codigo", "código é obrigatório")
	} else if len(n.Codigo) > 20 {
		fe.Add("codigo", "código deve ter no máximo 20 caracteres")
	}
	if strings.TrimSpace(n.Nome) == "" {
		fe.Add("nome", "nome é obrigatório")
	} else if len(n.Nome) > 150 {
		fe.Add("nome", "nome deve ter no máximo 150 caracteres")
	}
	if n.Descricao != nil && len(*n.Descricao) > 500 {
		fe.Add("descricao", "descrição deve ter no máximo 500 caracteres")
	}
}

// Validate implements Validatable for nodes without kind-specific fields.
func (n *Node) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	n.ValidateInto(&fe)
	return fe.Err()
}
