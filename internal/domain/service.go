package domain

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/core/tx"
	"retaguarda/pkg/logger"
)

var tracer = otel.Tracer("retaguarda/domain")

// Operation names a lifecycle operation.
type Operation string

const (
	OpList   Operation = "list"
	OpGet    Operation = "get"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Node is what the lifecycle service needs from a hierarchy entity.
// Every kind satisfies it by embedding entity.Node.
type Node interface {
	entity.Validatable
	entity.Identifiable
	GetCodigo() string
	GetNome() string
	Touch(at time.Time)
	Deactivate(at time.Time)
}

// ParentRef describes the immediate parent of a kind.
type ParentRef[T any] struct {
	// Entity is the parent's name in messages ("filial")
	Entity string

	// Field is the json name of the parent reference ("filialId")
	Field string

	ID     func(T) id.ID
	Exists Existence
}

// UniqueRule is one scoped uniqueness constraint beyond codigo/nome.
type UniqueRule[T any] struct {
	Column string
	Field  string // label used in the conflict message

	// Value returns the candidate; nil or "" skips the rule
	Value func(T) any

	// Scope bounds the check; nil means global
	Scope func(T) Scope

	Fold bool

	// Message overrides the default duplicate message
	Message string
}

// ChildGuard is one parent→child edge checked before a soft delete.
type ChildGuard struct {
	// Kind is the child kind ("sub_agrupamento")
	Kind string

	// Column of the child table pointing at the parent
	Column string

	Children Counter

	// Describe renders the blocking count ("1 sub-agrupamento(s) ativo(s)")
	Describe func(count int) string
}

// Rule is a kind-specific structural check that may read storage.
type Rule[T any] func(ctx context.Context, op Operation, entity T) error

// Observer receives the outcome of every lifecycle operation (metrics).
type Observer func(ctx context.Context, entity string, op Operation, err error)

// HierarchyServiceConfig configures the lifecycle routine for one kind.
type HierarchyServiceConfig[T Node] struct {
	Repo       Repository[T]
	TxManager  tx.Manager
	EntityName string

	// Parent is nil for the root kind
	Parent *ParentRef[T]

	// CodeScope and NameScope bound codigo/nome uniqueness; nil means global
	CodeScope func(T) Scope
	NameScope func(T) Scope

	Unique   []UniqueRule[T]
	Guards   []ChildGuard
	Rules    []Rule[T]
	Observer Observer

	// Now is the clock; defaults to time.Now
	Now func() time.Time
}

// HierarchyService implements create, update, soft delete and reads for one kind,
// enforcing parent gating, scoped uniqueness and dependency guards.
type HierarchyService[T Node] struct {
	repo       Repository[T]
	txManager  tx.Manager
	entityName string
	parent     *ParentRef[T]
	unique     []UniqueRule[T]
	guards     []ChildGuard
	rules      []Rule[T]
	observer   Observer
	now        func() time.Time
	hooks      *HookRegistry[T]
}

// NewHierarchyService creates the lifecycle service of a kind.
func NewHierarchyService[T Node](cfg HierarchyServiceConfig[T]) *HierarchyService[T] {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	unique := []UniqueRule[T]{
		{Column: "codigo", Field: "código", Value: func(e T) any { return e.GetCodigo() }, Scope: cfg.CodeScope},
		{Column: "nome", Field: "nome", Value: func(e T) any { return e.GetNome() }, Scope: cfg.NameScope},
	}
	unique = append(unique, cfg.Unique...)

	return &HierarchyService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		entityName: cfg.EntityName,
		parent:     cfg.Parent,
		unique:     unique,
		guards:     cfg.Guards,
		rules:      cfg.Rules,
		observer:   cfg.Observer,
		now:        now,
		hooks:      NewHookRegistry[T](),
	}
}

// Hooks returns the hook registry for external registration.
func (s *HierarchyService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// EntityName returns the kind name used in messages.
func (s *HierarchyService[T]) EntityName() string {
	return s.entityName
}

// Observe installs the outcome observer.
func (s *HierarchyService[T]) Observe(o Observer) {
	s.observer = o
}

// List returns active nodes. An empty result is not an error.
func (s *HierarchyService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	ctx, span := s.start(ctx, OpList)
	defer span.End()

	result, err := s.repo.List(ctx, filter)
	return result, s.finish(ctx, span, OpList, err)
}

// GetByID returns an active node; inactive and missing ids both yield NotFound.
func (s *HierarchyService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ctx, span := s.start(ctx, OpGet)
	defer span.End()

	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		err = s.normalizeGetErr(err, entityID)
	}
	return e, s.finish(ctx, span, OpGet, err)
}

// Exists reports whether an active node with the id exists.
func (s *HierarchyService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// Create validates, gates on the parent, applies kind rules and uniqueness, persists,
// and returns the node re-read from storage.
func (s *HierarchyService[T]) Create(ctx context.Context, e T) (T, error) {
	ctx, span := s.start(ctx, OpCreate)
	defer span.End()

	created, err := s.create(ctx, e)
	return created, s.finish(ctx, span, OpCreate, err)
}

func (s *HierarchyService[T]) create(ctx context.Context, e T) (T, error) {
	var zero T

	// 1. Structural validation
	if err := e.Validate(ctx); err != nil {
		return zero, s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// 2. Parent must exist and be active
		if err := s.checkParent(ctx, e); err != nil {
			return err
		}
		// 3. Kind-specific rules
		if err := s.runRules(ctx, OpCreate, e); err != nil {
			return err
		}
		// 4. Scoped uniqueness
		if err := s.checkUnique(ctx, e, nil); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeCreate, e); err != nil {
			return err
		}
		// 5. Persist
		if err := s.repo.Create(ctx, e); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	// 6. Re-read durable state with display associations
	created, err := s.repo.GetByID(ctx, e.GetID())
	if err != nil {
		return zero, s.normalizeGetErr(err, e.GetID())
	}

	s.runAfter(ctx, AfterCreate, created)
	return created, nil
}

// Update applies the same checks as Create except parent gating; the parent is immutable
// and the node's own id is excluded from uniqueness.
func (s *HierarchyService[T]) Update(ctx context.Context, e T) (T, error) {
	ctx, span := s.start(ctx, OpUpdate)
	defer span.End()

	updated, err := s.update(ctx, e)
	return updated, s.finish(ctx, span, OpUpdate, err)
}

func (s *HierarchyService[T]) update(ctx context.Context, e T) (T, error) {
	var zero T

	if err := e.Validate(ctx); err != nil {
		return zero, s.normalizeValidationErr(err)
	}

	entityID := e.GetID()
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID)
		}
		if s.parent != nil && s.parent.ID(existing) != s.parent.ID(e) {
			return apperror.NewFieldValidation(s.parent.Field, fmt.Sprintf("%s não pode ser alterado(a)", s.parent.Entity))
		}
		if err := s.runRules(ctx, OpUpdate, e); err != nil {
			return err
		}
		if err := s.checkUnique(ctx, e, &entityID); err != nil {
			return err
		}

		e.Touch(s.now())
		if err := s.hooks.Run(ctx, BeforeUpdate, e); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, e); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}

	updated, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return zero, s.normalizeGetErr(err, entityID)
	}

	s.runAfter(ctx, AfterUpdate, updated)
	return updated, nil
}

// Delete soft-deletes a node when no guarded kind has active children. There is no cascade.
func (s *HierarchyService[T]) Delete(ctx context.Context, entityID id.ID) error {
	ctx, span := s.start(ctx, OpDelete)
	defer span.End()

	return s.finish(ctx, span, OpDelete, s.delete(ctx, entityID))
}

func (s *HierarchyService[T]) delete(ctx context.Context, entityID id.ID) error {
	var deleted T

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, entityID)
		if err != nil {
			return s.normalizeGetErr(err, entityID)
		}

		if err := s.checkGuards(ctx, entityID); err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeDelete, existing); err != nil {
			return err
		}

		at := s.now()
		if err := s.repo.SoftDelete(ctx, entityID, at); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		existing.Deactivate(at)
		deleted = existing
		return nil
	})
	if err != nil {
		return err
	}

	s.runAfter(ctx, AfterDelete, deleted)
	return nil
}

// --- checks ---

func (s *HierarchyService[T]) checkParent(ctx context.Context, e T) error {
	if s.parent == nil {
		return nil
	}
	parentID := s.parent.ID(e)
	if id.IsNil(parentID) {
		return apperror.NewFieldValidation(s.parent.Field, fmt.Sprintf("%s é obrigatório(a)", s.parent.Entity))
	}
	ok, err := s.parent.Exists.Exists(ctx, parentID)
	if err != nil {
		return fmt.Errorf("check %s: %w", s.parent.Entity, err)
	}
	if !ok {
		return apperror.NewNotFound(s.parent.Entity, parentID.String())
	}
	return nil
}

func (s *HierarchyService[T]) runRules(ctx context.Context, op Operation, e T) error {
	for _, rule := range s.rules {
		if err := rule(ctx, op, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *HierarchyService[T]) checkUnique(ctx context.Context, e T, exclude *id.ID) error {
	for _, rule := range s.unique {
		value := rule.Value(e)
		if isEmptyCandidate(value) {
			continue
		}

		q := UniqueQuery{
			Column:    rule.Column,
			Value:     value,
			Fold:      rule.Fold,
			ExcludeID: exclude,
		}
		if rule.Scope != nil {
			q.Scope = rule.Scope(e)
		}

		exists, err := s.repo.ExistsInScope(ctx, q)
		if err != nil {
			return fmt.Errorf("check unique %s.%s: %w", s.entityName, rule.Column, err)
		}
		if exists {
			dup := apperror.NewDuplicate(s.entityName, rule.Field, value)
			if rule.Message != "" {
				dup.Message = rule.Message
			}
			return dup
		}
	}
	return nil
}

func (s *HierarchyService[T]) checkGuards(ctx context.Context, entityID id.ID) error {
	var blockers []apperror.Blocker
	for _, g := range s.guards {
		n, err := g.Children.CountActiveBy(ctx, g.Column, entityID)
		if err != nil {
			return fmt.Errorf("count %s: %w", g.Kind, err)
		}
		if n > 0 {
			blockers = append(blockers, apperror.Blocker{Kind: g.Kind, Count: n, Message: g.Describe(n)})
		}
	}
	if len(blockers) > 0 {
		return apperror.NewDependencyBlocked(s.entityName, entityID.String(), blockers)
	}
	return nil
}

func isEmptyCandidate(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case *string:
		return val == nil || *val == ""
	}
	return false
}

// --- plumbing ---

func (s *HierarchyService[T]) runAfter(ctx context.Context, event HookEvent, e T) {
	if err := s.hooks.Run(ctx, event, e); err != nil {
		logger.Warn(ctx, "after hook failed", "entity", s.entityName, "event", string(event), "error", err)
	}
}

func (s *HierarchyService[T]) start(ctx context.Context, op Operation) (context.Context, trace.Span) {
	return tracer.Start(ctx, s.entityName+"."+string(op),
		trace.WithAttributes(attribute.String("entity", s.entityName)))
}

// finish converts unexpected faults into a system error, records the span and notifies the observer.
func (s *HierarchyService[T]) finish(ctx context.Context, span trace.Span, op Operation, err error) error {
	if err != nil && !apperror.IsAppError(err) {
		logger.Error(ctx, "lifecycle operation failed",
			"entity", s.entityName,
			"operation", string(op),
			"error", err,
		)
		err = apperror.NewInternal(err).WithDetail("entity", s.entityName)
	}

	if err != nil {
		span.SetAttributes(attribute.String("outcome", string(apperror.KindOf(err))))
		if apperror.KindOf(err) == apperror.KindSystem {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	if s.observer != nil {
		s.observer(ctx, s.entityName, op, err)
	}
	return err
}

func (s *HierarchyService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *HierarchyService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	return err
}
