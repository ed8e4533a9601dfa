// Package catalogs wires the hierarchy services of every kind over one storage driver.
package catalogs

import (
	"retaguarda/internal/core/cache"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/audit"
	"retaguarda/internal/domain/catalogs/agrupamento"
	"retaguarda/internal/domain/catalogs/categoria"
	"retaguarda/internal/domain/catalogs/centrocusto"
	"retaguarda/internal/domain/catalogs/empresa"
	"retaguarda/internal/domain/catalogs/filial"
	"retaguarda/internal/domain/catalogs/produto"
	"retaguarda/internal/domain/catalogs/subagrupamento"
)

// Repos are the per-kind stores of one storage driver.
type Repos struct {
	Empresas        empresa.Repository
	Filiais         filial.Repository
	Agrupamentos    agrupamento.Repository
	SubAgrupamentos subagrupamento.Repository
	CentrosCusto    centrocusto.Repository
	Categorias      categoria.Repository
	Produtos        produto.Repository
	Ingredientes    produto.IngredienteRepository
}

// Services are the lifecycle services of every kind.
type Services struct {
	Empresa        *empresa.Service
	Filial         *filial.Service
	Agrupamento    *agrupamento.Service
	SubAgrupamento *subagrupamento.Service
	CentroCusto    *centrocusto.Service
	Categoria      *categoria.Service
	Produto        *produto.Service
	Ficha          *produto.FichaService
}

// Options are the optional collaborators of the services.
type Options struct {
	// Cache holds read projections (category tree); nil disables caching
	Cache cache.Cache

	// Observer receives the outcome of every lifecycle operation
	Observer domain.Observer
}

// NewServices wires every kind to its parent (existence) and children (guards).
func NewServices(r Repos, txm tx.Manager, opts Options) *Services {
	s := &Services{
		Empresa:        empresa.NewService(r.Empresas, txm, r.Filiais),
		Filial:         filial.NewService(r.Filiais, txm, r.Empresas, r.Agrupamentos),
		Agrupamento:    agrupamento.NewService(r.Agrupamentos, txm, r.Filiais, r.SubAgrupamentos),
		SubAgrupamento: subagrupamento.NewService(r.SubAgrupamentos, txm, r.Agrupamentos, r.CentrosCusto),
		CentroCusto:    centrocusto.NewService(r.CentrosCusto, txm, r.SubAgrupamentos, r.Categorias),
		Categoria: categoria.NewService(categoria.Deps{
			Repo:         r.Categorias,
			TxManager:    txm,
			CentrosCusto: r.CentrosCusto,
			Produtos:     r.Produtos,
			Cache:        opts.Cache,
		}),
		Produto: produto.NewService(produto.Deps{
			Repo:         r.Produtos,
			Ingredientes: r.Ingredientes,
			TxManager:    txm,
			Categorias:   r.Categorias,
		}),
		Ficha: produto.NewFichaService(r.Produtos, r.Ingredientes, txm),
	}

	if opts.Observer != nil {
		s.Empresa.Observe(opts.Observer)
		s.Filial.Observe(opts.Observer)
		s.Agrupamento.Observe(opts.Observer)
		s.SubAgrupamento.Observe(opts.Observer)
		s.CentroCusto.Observe(opts.Observer)
		s.Categoria.Observe(opts.Observer)
		s.Produto.Observe(opts.Observer)
		s.Ficha.Observe(opts.Observer)
	}

	return s
}

// IngredienteEntity is the audit entity type of ficha técnica links.
const IngredienteEntity = produto.IngredienteEntityName

// AttachAudit records every committed change of every kind into store.
func (s *Services) AttachAudit(store audit.Store) {
	audit.Attach(s.Empresa.Hooks(), empresa.EntityName, store)
	audit.Attach(s.Filial.Hooks(), filial.EntityName, store)
	audit.Attach(s.Agrupamento.Hooks(), agrupamento.EntityName, store)
	audit.Attach(s.SubAgrupamento.Hooks(), subagrupamento.EntityName, store)
	audit.Attach(s.CentroCusto.Hooks(), centrocusto.EntityName, store)
	audit.Attach(s.Categoria.Hooks(), categoria.EntityName, store)
	audit.Attach(s.Produto.Hooks(), produto.EntityName, store)
	audit.Attach(s.Ficha.Hooks(), IngredienteEntity, store)
}
