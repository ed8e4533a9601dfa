package produto

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/filter"
	"retaguarda/pkg/logger"
)

// IngredienteEntityName is the entity name of ficha técnica links in metrics and audit entries.
const IngredienteEntityName = "produto_ingrediente"

var tracer = otel.Tracer("retaguarda/produto")

// FichaService manages the ingredient links of a produto.
type FichaService struct {
	produtos     Repository
	ingredientes IngredienteRepository
	txManager    tx.Manager
	hooks        *domain.HookRegistry[*Ingrediente]
	observer     domain.Observer
	now          func() time.Time
}

// NewFichaService creates the ficha técnica service.
func NewFichaService(produtos Repository, ingredientes IngredienteRepository, txm tx.Manager) *FichaService {
	return &FichaService{
		produtos:     produtos,
		ingredientes: ingredientes,
		txManager:    txm,
		hooks:        domain.NewHookRegistry[*Ingrediente](),
		now:          time.Now,
	}
}

// Hooks returns the hook registry for external registration.
func (s *FichaService) Hooks() *domain.HookRegistry[*Ingrediente] {
	return s.hooks
}

// Observe installs the outcome observer.
func (s *FichaService) Observe(o domain.Observer) {
	s.observer = o
}

// List returns the active ingredients of a produto.
func (s *FichaService) List(ctx context.Context, produtoID id.ID) ([]*Ingrediente, error) {
	ctx, span := s.start(ctx, domain.OpList)
	defer span.End()

	items, err := s.list(ctx, produtoID)
	return items, s.finish(ctx, span, domain.OpList, err)
}

func (s *FichaService) list(ctx context.Context, produtoID id.ID) ([]*Ingrediente, error) {
	ok, err := s.produtos.Exists(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NewNotFound(EntityName, produtoID.String())
	}

	result, err := s.ingredientes.List(ctx, domain.ListFilter{
		AdvancedFilters: []filter.Item{filter.Eq("produto_id", produtoID)},
		OrderBy:         "ingrediente_nome",
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Add links an ingredient to a produto. The ingredient must be an active stock produto
// of the same empresa, distinct from the produto itself, and not already linked.
func (s *FichaService) Add(ctx context.Context, produtoID, ingredienteID id.ID, quantidade decimal.Decimal, unidade *string) (*Ingrediente, error) {
	ctx, span := s.start(ctx, domain.OpCreate)
	defer span.End()

	created, err := s.add(ctx, produtoID, ingredienteID, quantidade, unidade)
	return created, s.finish(ctx, span, domain.OpCreate, err)
}

func (s *FichaService) add(ctx context.Context, produtoID, ingredienteID id.ID, quantidade decimal.Decimal, unidade *string) (*Ingrediente, error) {
	link := NewIngrediente(produtoID, ingredienteID, quantidade, unidade)
	if err := link.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prod, err := s.produtos.GetByID(ctx, produtoID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(EntityName, produtoID.String())
			}
			return err
		}

		ingrediente, err := s.produtos.GetByID(ctx, ingredienteID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("ingrediente", ingredienteID.String())
			}
			return err
		}
		if ingrediente.EmpresaID != prod.EmpresaID {
			return apperror.NewFieldValidation("ingredienteId", "o ingrediente deve pertencer à mesma empresa do produto")
		}
		if !ingrediente.ProdutoEstoque {
			return apperror.NewFieldValidation("ingredienteId", "o ingrediente deve ser um produto de estoque")
		}

		dup, err := s.ingredientes.ExistsInScope(ctx, domain.UniqueQuery{
			Column: "ingrediente_id",
			Value:  ingredienteID,
			Scope:  domain.Scope{"produto_id": produtoID},
		})
		if err != nil {
			return err
		}
		if dup {
			return apperror.NewConflict("o ingrediente já faz parte da ficha técnica").
				WithDetail("ingredienteId", ingredienteID)
		}

		if err := s.hooks.Run(ctx, domain.BeforeCreate, link); err != nil {
			return err
		}
		return s.ingredientes.Create(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.ingredientes.GetByID(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	s.runAfter(ctx, domain.AfterCreate, created)
	return created, nil
}

// Remove soft-deletes an ingredient link of a produto.
func (s *FichaService) Remove(ctx context.Context, produtoID, linkID id.ID) error {
	ctx, span := s.start(ctx, domain.OpDelete)
	defer span.End()

	return s.finish(ctx, span, domain.OpDelete, s.remove(ctx, produtoID, linkID))
}

func (s *FichaService) remove(ctx context.Context, produtoID, linkID id.ID) error {
	var removed *Ingrediente
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		link, err := s.ingredientes.GetByID(ctx, linkID)
		if err != nil {
			return err
		}
		if link.ProdutoID != produtoID {
			return apperror.NewNotFound("ingrediente", linkID.String())
		}

		at := s.now()
		if err := s.ingredientes.SoftDelete(ctx, linkID, at); err != nil {
			return err
		}
		link.Deactivate(at)
		removed = link
		return nil
	})
	if err != nil {
		return err
	}
	s.runAfter(ctx, domain.AfterDelete, removed)
	return nil
}

func (s *FichaService) runAfter(ctx context.Context, event domain.HookEvent, link *Ingrediente) {
	if err := s.hooks.Run(ctx, event, link); err != nil {
		logger.Warn(ctx, "after hook failed", "entity", IngredienteEntityName, "event", string(event), "error", err)
	}
}

func (s *FichaService) start(ctx context.Context, op domain.Operation) (context.Context, trace.Span) {
	return tracer.Start(ctx, IngredienteEntityName+"."+string(op),
		trace.WithAttributes(attribute.String("entity", IngredienteEntityName)))
}

func (s *FichaService) finish(ctx context.Context, span trace.Span, op domain.Operation, err error) error {
	if err != nil && !apperror.IsAppError(err) {
		logger.Error(ctx, "ficha técnica operation failed", "operation", string(op), "error", err)
		err = apperror.NewInternal(err).WithDetail("entity", IngredienteEntityName)
	}
	if apperror.KindOf(err) == apperror.KindSystem {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.observer != nil {
		s.observer(ctx, IngredienteEntityName, op, err)
	}
	return err
}
