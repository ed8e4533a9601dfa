package produto

import (
	"context"
	"fmt"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/catalogs/categoria"
)

// EntityName is the kind name used in messages, permissions and audit entries.
const EntityName = "produto"

// Repository defines the interface for produto storage.
type Repository interface {
	domain.Repository[*Produto]
}

// IngredienteRepository stores ficha técnica links.
type IngredienteRepository interface {
	domain.Repository[*Ingrediente]
}

// CategoriaReader is the slice of the categoria store the produto rules need.
type CategoriaReader interface {
	domain.Existence
	GetByID(ctx context.Context, id id.ID) (*categoria.Categoria, error)
}

// Deps are the collaborators of the Produto service.
type Deps struct {
	Repo         Repository
	Ingredientes IngredienteRepository
	TxManager    tx.Manager
	Categorias   CategoriaReader
}

// Service provides business logic for the Produto catalog.
type Service struct {
	*domain.HierarchyService[*Produto]
	repo         Repository
	categorias   CategoriaReader
	ingredientes domain.Counter
}

// NewService creates the Produto service.
func NewService(deps Deps) *Service {
	svc := &Service{repo: deps.Repo, categorias: deps.Categorias, ingredientes: deps.Ingredientes}

	svc.HierarchyService = domain.NewHierarchyService(domain.HierarchyServiceConfig[*Produto]{
		Repo:       deps.Repo,
		TxManager:  deps.TxManager,
		EntityName: EntityName,
		Parent: &domain.ParentRef[*Produto]{
			Entity: "categoria",
			Field:  "categoriaId",
			ID:     func(p *Produto) id.ID { return p.CategoriaID },
			Exists: deps.Categorias,
		},
		NameScope: func(p *Produto) domain.Scope { return domain.Scope{"categoria_id": p.CategoriaID} },
		Rules:     []domain.Rule[*Produto]{svc.checkCategoriaFolha, svc.checkEstoqueEmUso},
		Guards: []domain.ChildGuard{
			{
				Kind:     "ingrediente",
				Column:   "produto_id",
				Children: deps.Ingredientes,
				Describe: func(n int) string { return fmt.Sprintf("%d ingrediente(s) ativo(s) na ficha técnica", n) },
			},
			{
				Kind:     "ficha_tecnica",
				Column:   "ingrediente_id",
				Children: deps.Ingredientes,
				Describe: func(n int) string { return fmt.Sprintf("%d ficha(s) técnica(s) que usam o produto", n) },
			},
		},
	})

	return svc
}

// checkCategoriaFolha rejects categories that are not level 3. The category is immutable on update.
func (s *Service) checkCategoriaFolha(ctx context.Context, op domain.Operation, p *Produto) error {
	if op != domain.OpCreate {
		return nil
	}
	cat, err := s.categorias.GetByID(ctx, p.CategoriaID)
	if err != nil {
		return err
	}
	if !cat.IsFolha() {
		return apperror.NewFieldValidation("categoriaId", "produtos só podem ser vinculados a categorias de nível 3")
	}
	return nil
}

// checkEstoqueEmUso keeps produtos that are ingredients of an active ficha técnica
// flagged as stock items.
func (s *Service) checkEstoqueEmUso(ctx context.Context, op domain.Operation, p *Produto) error {
	if op != domain.OpUpdate || p.ProdutoEstoque {
		return nil
	}
	n, err := s.ingredientes.CountActiveBy(ctx, "ingrediente_id", p.ID)
	if err != nil {
		return fmt.Errorf("count fichas of produto: %w", err)
	}
	if n > 0 {
		return apperror.NewFieldValidation("produtoEstoque",
			fmt.Sprintf("o produto é ingrediente de %d ficha(s) técnica(s) ativa(s)", n))
	}
	return nil
}
