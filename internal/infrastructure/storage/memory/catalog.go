package memory

import (
	"context"

	"retaguarda/internal/domain/catalogs"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
)

// Catalog holds one repository per kind. Resolvers play the role of the postgres
// read views: they fill parent names and ancestor ids from the parent stores.
type Catalog struct {
	TxManager       *TxManager
	Empresas        *Repo[*empresa.Empresa]
	Filiais         *Repo[*filial.Filial]
	Agrupamentos    *Repo[*agrupamento.Agrupamento]
	SubAgrupamentos *Repo[*subagrupamento.SubAgrupamento]
	CentrosCusto    *Repo[*centrocusto.CentroCusto]
	Categorias      *Repo[*categoria.Categoria]
	Produtos        *Repo[*produto.Produto]
	Ingredientes    *Repo[*produto.Ingrediente]
}

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() *Catalog {
	c := &Catalog{TxManager: NewTxManager()}

	c.Empresas = NewRepo(Config[*empresa.Empresa]{Entity: empresa.EntityName})

	c.Filiais = NewRepo(Config[*filial.Filial]{
		Entity:       filial.EntityName,
		ParentColumn: "empresa_id",
		DefaultOrder: "empresa_nome,nome",
		Resolve: func(ctx context.Context, f *filial.Filial) error {
			if e, ok := c.Empresas.lookup(ctx, f.EmpresaID); ok {
				f.EmpresaNome = e.Nome
			}
			return nil
		},
	})

	c.Agrupamentos = NewRepo(Config[*agrupamento.Agrupamento]{
		Entity:       agrupamento.EntityName,
		ParentColumn: "filial_id",
		DefaultOrder: "filial_nome,nome",
		Resolve: func(ctx context.Context, a *agrupamento.Agrupamento) error {
			if f, ok := c.Filiais.lookup(ctx, a.FilialID); ok {
				a.FilialNome = f.Nome
				a.EmpresaID = f.EmpresaID
			}
			return nil
		},
	})

	c.SubAgrupamentos = NewRepo(Config[*subagrupamento.SubAgrupamento]{
		Entity:       subagrupamento.EntityName,
		ParentColumn: "agrupamento_id",
		DefaultOrder: "agrupamento_nome,nome",
		Resolve: func(ctx context.Context, s *subagrupamento.SubAgrupamento) error {
			if a, ok := c.Agrupamentos.lookup(ctx, s.AgrupamentoID); ok {
				s.AgrupamentoNome = a.Nome
				s.FilialID = a.FilialID
				s.EmpresaID = a.EmpresaID
			}
			return nil
		},
	})

	c.CentrosCusto = NewRepo(Config[*centrocusto.CentroCusto]{
		Entity:       centrocusto.EntityName,
		ParentColumn: "sub_agrupamento_id",
		DefaultOrder: "sub_agrupamento_nome,nome",
		Resolve: func(ctx context.Context, cc *centrocusto.CentroCusto) error {
			if s, ok := c.SubAgrupamentos.lookup(ctx, cc.SubAgrupamentoID); ok {
				cc.SubAgrupamentoNome = s.Nome
				cc.AgrupamentoID = s.AgrupamentoID
				cc.FilialID = s.FilialID
				cc.EmpresaID = s.EmpresaID
			}
			return nil
		},
	})

	c.Categorias = NewRepo(Config[*categoria.Categoria]{
		Entity:       categoria.EntityName,
		ParentColumn: "categoria_pai_id",
		DefaultOrder: "centro_custo_nome,nivel,nome",
		Resolve: func(ctx context.Context, cat *categoria.Categoria) error {
			if cc, ok := c.CentrosCusto.lookup(ctx, cat.CentroCustoID); ok {
				cat.CentroCustoNome = cc.Nome
				cat.FilialID = cc.FilialID
				cat.EmpresaID = cc.EmpresaID
			}
			if cat.CategoriaPaiID != nil {
				if pai, ok := c.Categorias.lookup(ctx, *cat.CategoriaPaiID); ok {
					nome := pai.Nome
					cat.CategoriaPaiNome = &nome
				}
			}
			return nil
		},
	})

	c.Produtos = NewRepo(Config[*produto.Produto]{
		Entity:       produto.EntityName,
		ParentColumn: "categoria_id",
		DefaultOrder: "categoria_nome,nome",
		Resolve: func(ctx context.Context, p *produto.Produto) error {
			if cat, ok := c.Categorias.lookup(ctx, p.CategoriaID); ok {
				p.CategoriaNome = cat.Nome
				p.CentroCustoID = cat.CentroCustoID
				p.FilialID = cat.FilialID
				p.EmpresaID = cat.EmpresaID
			}
			return nil
		},
	})

	c.Ingredientes = NewRepo(Config[*produto.Ingrediente]{
		Entity:        "ingrediente",
		ParentColumn:  "produto_id",
		SearchColumns: []string{"ingrediente_codigo", "ingrediente_nome"},
		DefaultOrder:  "ingrediente_nome",
		Resolve: func(ctx context.Context, i *produto.Ingrediente) error {
			if p, ok := c.Produtos.lookup(ctx, i.IngredienteID); ok {
				i.IngredienteCodigo = p.Codigo
				i.IngredienteNome = p.Nome
			}
			return nil
		},
	})

	return c
}

// Repos exposes the stores to the service layer.
func (c *Catalog) Repos() catalogs.Repos {
	return catalogs.Repos{
		Empresas:        c.Empresas,
		Filiais:         c.Filiais,
		Agrupamentos:    c.Agrupamentos,
		SubAgrupamentos: c.SubAgrupamentos,
		CentrosCusto:    c.CentrosCusto,
		Categorias:      c.Categorias,
		Produtos:        c.Produtos,
		Ingredientes:    c.Ingredientes,
	}
}
