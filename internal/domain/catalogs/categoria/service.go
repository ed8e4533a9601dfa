package categoria

import (
	"context"
	"fmt"
	"time"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/cache"
	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/filter"
	"retaguarda/pkg/logger"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "categoria"

const arvoreTTL = 10 * time.Minute

// Repository defines the interface for categoria storage.
type Repository interface {
	domain.Repository[*Categoria]
}

// Deps are the collaborators of the Categoria service.
type Deps struct {
	Repo         Repository
	TxManager    tx.Manager
	CentrosCusto domain.Existence
	Produtos     domain.Counter

	// Cache holds tree projections; nil disables caching
	Cache cache.Cache
}

// Service provides business logic for the Categoria catalog.
type Service struct {
	*domain.HierarchyService[*Categoria]
	repo  Repository
	cache cache.Cache
}

// NewService creates the Categoria service.
func NewService(deps Deps) *Service {
	svc := &Service{repo: deps.Repo, cache: deps.Cache}

	byCentroCusto := func(c *Categoria) domain.Scope { return domain.Scope{"centro_custo_id": c.CentroCustoID} }
	bySiblings := func(c *Categoria) domain.Scope {
		scope := domain.Scope{"centro_custo_id": c.CentroCustoID, "categoria_pai_id": nil}
		if c.CategoriaPaiID != nil {
			scope["categoria_pai_id"] = *c.CategoriaPaiID
		}
		return scope
	}

	svc.HierarchyService = domain.NewHierarchyService(domain.HierarchyServiceConfig[*Categoria]{
		Repo:       deps.Repo,
		TxManager:  deps.TxManager,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*Categoria]{
			Entity: "centro_custo",
			Field:  "centroCustoId",
			ID:     func(c *Categoria) id.ID { return c.CentroCustoID },
			Exists: deps.CentrosCusto,
		},
		CodeScope: byCentroCusto,
		NameScope: bySiblings,
		Rules:     []domain.Rule[*Categoria]{svc.checkHierarquia},
		Guards: []domain.ChildGuard{
			{
				Kind:     "categoria",
				Column:   "categoria_pai_id",
				Children: deps.Repo,
				Describe: func(n int) string { return fmt.Sprintf("%d categoria(s) filha(s) ativa(s)", n) },
			},
			{
				Kind:     "produto",
				Column:   "categoria_id",
				Children: deps.Produtos,
				Describe: func(n int) string { return fmt.Sprintf("%d produto(s) ativo(s)", n) },
			},
		},
	})

	svc.Hooks().OnAfterChange(svc.invalidateArvore)

	return svc
}

// checkHierarquia enforces the level/parent invariant on create and its immutability on update.
func (s *Service) checkHierarquia(ctx context.Context, op domain.Operation, c *Categoria) error {
	if op == domain.OpUpdate {
		existing, err := s.repo.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		if existing.Nivel != c.Nivel || !id.Equal(existing.CategoriaPaiID, c.CategoriaPaiID) {
			return apperror.NewFieldValidation("nivel", "nível e categoria pai não podem ser alterados")
		}
		return nil
	}

	if c.CategoriaPaiID == nil {
		return nil
	}

	pai, err := s.repo.GetByID(ctx, *c.CategoriaPaiID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewFieldValidation("categoriaPaiId", "categoria pai não encontrada ou inativa")
		}
		return err
	}

	var fe apperror.FieldErrors
	if pai.Nivel != c.Nivel-1 {
		fe.Add("categoriaPaiId", fmt.Sprintf("categoria pai deve ser de nível %d", c.Nivel-1))
	}
	if pai.CentroCustoID != c.CentroCustoID {
		fe.Add("categoriaPaiId", "categoria pai deve pertencer ao mesmo centro de custo")
	}
	return fe.Err()
}

// ListByCentroCusto returns every active category of a cost center.
func (s *Service) ListByCentroCusto(ctx context.Context, centroCustoID id.ID) ([]*Categoria, error) {
	f := domain.ListFilter{
		AdvancedFilters: []filter.Item{filter.Eq("centro_custo_id", centroCustoID)},
		OrderBy:         "nivel,nome",
	}
	result, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Arvore returns the nested category tree of a cost center, cached until a category changes.
func (s *Service) Arvore(ctx context.Context, centroCustoID id.ID) ([]*ArvoreNode, error) {
	return cache.GetOrSet(ctx, s.cache, arvoreKey(centroCustoID), arvoreTTL, func(ctx context.Context) ([]*ArvoreNode, error) {
		items, err := s.ListByCentroCusto(ctx, centroCustoID)
		if err != nil {
			return nil, err
		}
		return BuildArvore(items), nil
	})
}

func (s *Service) invalidateArvore(ctx context.Context, c *Categoria) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, arvoreKey(c.CentroCustoID)); err != nil {
		logger.Warn(ctx, "failed to invalidate category tree", "centro_custo_id", c.CentroCustoID, "error", err)
	}
	return nil
}

func arvoreKey(centroCustoID id.ID) string {
	return "categorias:arvore:" + centroCustoID.String()
}
