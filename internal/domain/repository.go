// Package domain provides the generic hierarchy lifecycle shared by every catalog kind.
package domain

import (
	"context"
	"time"

	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain/filter"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
// Only active rows are ever returned.
type ListFilter struct {
	// Search matches codigo or nome (case-insensitive substring)
	Search string

	// ParentID filters by the immediate parent
	ParentID *id.ID

	// AdvancedFilters are column filters (ancestor ids, flags...), whitelisted by the repository
	AdvancedFilters []filter.Item

	// OrderBy specifies sorting (e.g., "nome", "-data_criacao"); empty uses the repository default
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit: 50,
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Scope is the set of column→value pairs bounding a uniqueness check.
// A nil value means "IS NULL"; an empty scope is global.
type Scope map[string]any

// UniqueQuery asks whether an active row other than ExcludeID has Column = Value inside Scope.
type UniqueQuery struct {
	Column    string
	Value     any
	Scope     Scope
	Fold      bool // compare case-insensitively
	ExcludeID *id.ID
}

// --- Repository Interfaces ---

// Repository is the persistence contract of one hierarchy kind.
// Every read is implicitly restricted to active rows.
type Repository[T entity.Identifiable] interface {
	// Create inserts a new row
	Create(ctx context.Context, entity T) error

	// Update modifies an active row in place; inactive or missing rows yield NotFound
	Update(ctx context.Context, entity T) error

	// GetByID returns an active row, re-read through the display view
	GetByID(ctx context.Context, id id.ID) (T, error)

	// Exists reports whether an active row with the id exists
	Exists(ctx context.Context, id id.ID) (bool, error)

	// List returns active rows with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// ExistsInScope is the scoped uniqueness check
	ExistsInScope(ctx context.Context, q UniqueQuery) (bool, error)

	// CountActiveBy counts active rows whose column equals value (dependency guard)
	CountActiveBy(ctx context.Context, column string, value any) (int, error)

	// SoftDelete flips the active flag
	SoftDelete(ctx context.Context, id id.ID, at time.Time) error
}

// Existence is the read-only slice of a parent repository used for parent gating.
type Existence interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}

// Counter is the read-only slice of a child repository used by dependency guards.
type Counter interface {
	CountActiveBy(ctx context.Context, column string, value any) (int, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	AfterCreate  HookEvent = "after_create"
	BeforeUpdate HookEvent = "before_update"
	AfterUpdate  HookEvent = "after_update"
	BeforeDelete HookEvent = "before_delete"
	AfterDelete  HookEvent = "after_delete"
)

// Hook is a function that runs at specific lifecycle points.
// Before-hooks run inside the transaction and abort it on error.
// After-hooks run once the transaction is committed; their errors are logged only.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnAfterCreate registers a hook to run after create.
func (r *HookRegistry[T]) OnAfterCreate(hook Hook[T]) { r.On(AfterCreate, hook) }

// OnAfterUpdate registers a hook to run after update.
func (r *HookRegistry[T]) OnAfterUpdate(hook Hook[T]) { r.On(AfterUpdate, hook) }

// OnAfterDelete registers a hook to run after delete.
func (r *HookRegistry[T]) OnAfterDelete(hook Hook[T]) { r.On(AfterDelete, hook) }

// OnAfterChange registers the same hook after create, update and delete.
func (r *HookRegistry[T]) OnAfterChange(hook Hook[T]) {
	r.On(AfterCreate, hook)
	r.On(AfterUpdate, hook)
	r.On(AfterDelete, hook)
}
