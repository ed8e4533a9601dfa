// Package produto provides the Produto catalog and its ficha técnica (ingredient composition).
package produto

import (
	"context"

	"github.com/shopspring/decimal"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// Produto is a sellable and/or stockable item attached to a leaf Categoria.
type Produto struct {
	entity.Node

	CategoriaID id.ID `db:"categoria_id" json:"categoriaId"`

	Preco          decimal.Decimal `db:"preco" json:"preco"`
	ProdutoVenda   bool            `db:"produto_venda" json:"produtoVenda"`
	ProdutoEstoque bool            `db:"produto_estoque" json:"produtoEstoque"`
	UnidadeMedida  *string         `db:"unidade_medida" json:"unidadeMedida,omitempty"`

	// Resolved by the read view
	CategoriaNome string `db:"categoria_nome" write:"-" json:"categoriaNome,omitempty"`
	CentroCustoID id.ID  `db:"centro_custo_id" write:"-" json:"centroCustoId"`
	FilialID      id.ID  `db:"filial_id" write:"-" json:"filialId"`
	EmpresaID     id.ID  `db:"empresa_id" write:"-" json:"empresaId"`
}

// NewProduto creates an active Produto under categoriaID.
func NewProduto(categoriaID id.ID, codigo, nome string, preco decimal.Decimal, venda, estoque bool) *Produto {
	return &Produto{
		Node:           entity.NewNode(codigo, nome, nil),
		CategoriaID:    categoriaID,
		Preco:          preco,
		ProdutoVenda:   venda,
		ProdutoEstoque: estoque,
	}
}

// Validate implements entity.Validatable interface.
func (p *Produto) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	p.Node.ValidateInto(&fe)

	if id.IsNil(p.CategoriaID) {
		fe.Add("categoriaId", "categoria é obrigatória")
	}
	if !p.Preco.IsPositive() {
		fe.Add("preco", "preço deve ser maior que zero")
	}
	if !p.ProdutoVenda && !p.ProdutoEstoque {
		fe.Add("produtoVenda", "deve ser marcado como Produto de Venda ou Estoque")
	}
	if p.UnidadeMedida != nil && len(*p.UnidadeMedida) > 10 {
		fe.Add("unidadeMedida", "unidade de medida deve ter no máximo 10 caracteres")
	}

	return fe.Err()
}

// Ingrediente links a Produto to one ingredient of its ficha técnica.
type Ingrediente struct {
	entity.BaseEntity

	ProdutoID     id.ID           `db:"produto_id" json:"produtoId"`
	IngredienteID id.ID           `db:"ingrediente_id" json:"ingredienteId"`
	Quantidade    decimal.Decimal `db:"quantidade" json:"quantidade"`
	UnidadeMedida *string         `db:"unidade_medida" json:"unidadeMedida,omitempty"`

	// Resolved by the read view
	IngredienteCodigo string `db:"ingrediente_codigo" write:"-" json:"ingredienteCodigo,omitempty"`
	IngredienteNome   string `db:"ingrediente_nome" write:"-" json:"ingredienteNome,omitempty"`
}

// NewIngrediente creates an active ingredient link.
func NewIngrediente(produtoID, ingredienteID id.ID, quantidade decimal.Decimal, unidade *string) *Ingrediente {
	return &Ingrediente{
		BaseEntity:    entity.NewBaseEntity(),
		ProdutoID:     produtoID,
		IngredienteID: ingredienteID,
		Quantidade:    quantidade,
		UnidadeMedida: unidade,
	}
}

// Validate implements entity.Validatable interface.
func (i *Ingrediente) Validate(ctx context.Context) error {
	var fe apperror.FieldErrors
	if id.IsNil(i.IngredienteID) {
		fe.Add("ingredienteId", "ingrediente é obrigatório")
	}
	if !i.Quantidade.IsPositive() {
		fe.Add("quantidade", "quantidade deve ser maior que zero")
	}
	if i.IngredienteID == i.ProdutoID {
		fe.Add("ingredienteId", "um produto não pode ser ingrediente de si mesmo")
	}
	return fe.Err()
}
