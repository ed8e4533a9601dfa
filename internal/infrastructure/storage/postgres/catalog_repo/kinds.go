package catalog_repo

import (
	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
	"retaguarda/internal/infrastructure/storage/postgres"
)

var (
	_ empresa.Repository            = (*Base[*empresa.Empresa])(nil)
	_ filial.Repository             = (*Base[*filial.Filial])(nil)
	_ agrupamento.Repository        = (*Base[*agrupamento.Agrupamento])(nil)
	_ subagrupamento.Repository     = (*Base[*subagrupamento.SubAgrupamento])(nil)
	_ centrocusto.Repository        = (*Base[*centrocusto.CentroCusto])(nil)
	_ categoria.Repository          = (*Base[*categoria.Categoria])(nil)
	_ produto.Repository            = (*Base[*produto.Produto])(nil)
	_ produto.IngredienteRepository = (*Base[*produto.Ingrediente])(nil)
	_ produto.CategoriaReader       = (*Base[*categoria.Categoria])(nil)
)

// NewEmpresaRepo creates the empresa repository.
func NewEmpresaRepo(txm *postgres.TxManager) *Base[*empresa.Empresa] {
	return NewBase(txm, Config[*empresa.Empresa]{
		Table:  "empresas",
		View:   "vw_empresas",
		Entity: empresa.EntityName,
		New:    func() *empresa.Empresa { return &empresa.Empresa{} },
	})
}

// NewFilialRepo creates the filial repository.
func NewFilialRepo(txm *postgres.TxManager) *Base[*filial.Filial] {
	return NewBase(txm, Config[*filial.Filial]{
		Table:        "filiais",
		View:         "vw_filiais",
		Entity:       filial.EntityName,
		ParentColumn: "empresa_id",
		DefaultOrder: "empresa_nome ASC, nome ASC",
		New:          func() *filial.Filial { return &filial.Filial{} },
	})
}

// NewAgrupamentoRepo creates the agrupamento repository.
func NewAgrupamentoRepo(txm *postgres.TxManager) *Base[*agrupamento.Agrupamento] {
	return NewBase(txm, Config[*agrupamento.Agrupamento]{
		Table:        "agrupamentos",
		View:         "vw_agrupamentos",
		Entity:       agrupamento.EntityName,
		ParentColumn: "filial_id",
		DefaultOrder: "filial_nome ASC, nome ASC",
		New:          func() *agrupamento.Agrupamento { return &agrupamento.Agrupamento{} },
	})
}

// NewSubAgrupamentoRepo creates the sub-agrupamento repository.
func NewSubAgrupamentoRepo(txm *postgres.TxManager) *Base[*subagrupamento.SubAgrupamento] {
	return NewBase(txm, Config[*subagrupamento.SubAgrupamento]{
		Table:        "sub_agrupamentos",
		View:         "vw_sub_agrupamentos",
		Entity:       subagrupamento.EntityName,
		ParentColumn: "agrupamento_id",
		DefaultOrder: "agrupamento_nome ASC, nome ASC",
		New:          func() *subagrupamento.SubAgrupamento { return &subagrupamento.SubAgrupamento{} },
	})
}

// NewCentroCustoRepo creates the centro de custo repository.
func NewCentroCustoRepo(txm *postgres.TxManager) *Base[*centrocusto.CentroCusto] {
	return NewBase(txm, Config[*centrocusto.CentroCusto]{
		Table:        "centros_custo",
		View:         "vw_centros_custo",
		Entity:       centrocusto.EntityName,
		ParentColumn: "sub_agrupamento_id",
		DefaultOrder: "sub_agrupamento_nome ASC, nome ASC",
		New:          func() *centrocusto.CentroCusto { return &centrocusto.CentroCusto{} },
	})
}

// NewCategoriaRepo creates the categoria repository.
// ListFilter.ParentID selects the children of a category.
func NewCategoriaRepo(txm *postgres.TxManager) *Base[*categoria.Categoria] {
	return NewBase(txm, Config[*categoria.Categoria]{
		Table:        "categorias",
		View:         "vw_categorias",
		Entity:       categoria.EntityName,
		ParentColumn: "categoria_pai_id",
		DefaultOrder: "centro_custo_nome ASC, nivel ASC, nome ASC",
		New:          func() *categoria.Categoria { return &categoria.Categoria{} },
	})
}

// NewProdutoRepo creates the produto repository.
func NewProdutoRepo(txm *postgres.TxManager) *Base[*produto.Produto] {
	return NewBase(txm, Config[*produto.Produto]{
		Table:        "produtos",
		View:         "vw_produtos",
		Entity:       produto.EntityName,
		ParentColumn: "categoria_id",
		DefaultOrder: "categoria_nome ASC, nome ASC",
		New:          func() *produto.Produto { return &produto.Produto{} },
	})
}

// NewIngredienteRepo creates the ficha técnica repository.
func NewIngredienteRepo(txm *postgres.TxManager) *Base[*produto.Ingrediente] {
	return NewBase(txm, Config[*produto.Ingrediente]{
		Table:         "produto_ingredientes",
		View:          "vw_produto_ingredientes",
		Entity:        "ingrediente",
		ParentColumn:  "produto_id",
		SearchColumns: []string{"ingrediente_codigo", "ingrediente_nome"},
		DefaultOrder:  "ingrediente_nome ASC",
		New:           func() *produto.Ingrediente { return &produto.Ingrediente{} },
	})
}

// NewRepos creates every kind's repository over one transaction manager.
func NewRepos(txm *postgres.TxManager) catalogs.Repos {
	return catalogs.Repos{
		Empresas:        NewEmpresaRepo(txm),
		Filiais:         NewFilialRepo(txm),
		Agrupamentos:    NewAgrupamentoRepo(txm),
		SubAgrupamentos: NewSubAgrupamentoRepo(txm),
		CentrosCusto:    NewCentroCustoRepo(txm),
		Categorias:      NewCategoriaRepo(txm),
		Produtos:        NewProdutoRepo(txm),
		Ingredientes:    NewIngredienteRepo(txm),
	}
}
