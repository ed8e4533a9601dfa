package memory

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/filter"
	"retaguarda/internal/infrastructure/storage"
)

// Resolver fills the view-only fields of a row copy (parent names, ancestor ids).
type Resolver[T any] func(ctx context.Context, row T) error

// Config describes one kind's storage.
type Config[T any] struct {
	Entity        string
	ParentColumn  string
	SearchColumns []string
	DefaultOrder  string
	Resolve       Resolver[T]
}

type deactivatable interface {
	Deactivate(at time.Time)
}

// Repo is a generic in-memory repository. Rows are stored as copies so callers never
// share state with the store.
type Repo[T entity.Identifiable] struct {
	mu    sync.RWMutex
	rows  map[id.ID]T
	order []id.ID

	entity        string
	parentColumn  string
	searchColumns []string
	defaultOrder  string
	resolve       Resolver[T]
	readable      map[string]struct{}
	writable      map[string]struct{}
}

// NewRepo creates an empty repository.
func NewRepo[T entity.Identifiable](cfg Config[T]) *Repo[T] {
	cols := storage.ExtractColumns[T]()
	r := &Repo[T]{
		rows:          make(map[id.ID]T),
		entity:        cfg.Entity,
		parentColumn:  cfg.ParentColumn,
		searchColumns: cfg.SearchColumns,
		defaultOrder:  cfg.DefaultOrder,
		resolve:       cfg.Resolve,
		readable:      toSet(cols.Read),
		writable:      toSet(cols.Write),
	}
	if r.searchColumns == nil {
		r.searchColumns = []string{"codigo", "nome"}
	}
	if r.defaultOrder == "" {
		r.defaultOrder = "nome"
	}
	return r
}

func toSet(cols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}
	return set
}

// clone returns a deep copy of the row. Exported pointer, slice and map fields are
// copied; unexported fields (time.Location, decimal internals) are immutable and shared.
func clone[T any](row T) T {
	rv := reflect.ValueOf(row)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return row
	}
	return deepCopy(rv).Interface().(T)
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		cp := reflect.New(v.Elem().Type())
		cp.Elem().Set(deepCopy(v.Elem()))
		return cp
	case reflect.Struct:
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		for i := 0; i < cp.NumField(); i++ {
			if f := cp.Field(i); f.CanSet() {
				f.Set(deepCopy(f))
			}
		}
		return cp
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			cp.Index(i).Set(deepCopy(v.Index(i)))
		}
		return cp
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		cp := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return cp
	}
	return v
}

// Create inserts a new row.
func (r *Repo[T]) Create(ctx context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[e.GetID()]; ok {
		return apperror.NewConflict(fmt.Sprintf("%s %s já existe", r.entity, e.GetID()))
	}
	r.rows[e.GetID()] = clone(e)
	r.order = append(r.order, e.GetID())
	return nil
}

// Update replaces an active row, keeping its activity flag and creation time.
func (r *Repo[T]) Update(ctx context.Context, e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[e.GetID()]
	if !ok || !current.IsAtiva() {
		return apperror.NewNotFound(r.entity, e.GetID().String())
	}

	next := clone(e)
	keep := storage.StructToMap(current)
	setBase(next, keep["ativa"].(bool), keep["data_criacao"].(time.Time))
	r.rows[e.GetID()] = next
	return nil
}

// setBase restores the immutable base fields on an updated row.
func setBase(row any, ativa bool, criacao time.Time) {
	rv := reflect.ValueOf(row).Elem()
	base := findBase(rv)
	if !base.IsValid() {
		return
	}
	b := base.Addr().Interface().(*entity.BaseEntity)
	b.Ativa = ativa
	b.DataCriacao = criacao
}

func findBase(rv reflect.Value) reflect.Value {
	if rv.Type() == reflect.TypeOf(entity.BaseEntity{}) {
		return rv
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Type().Field(i)
		if !f.Anonymous || rv.Field(i).Kind() != reflect.Struct {
			continue
		}
		if found := findBase(rv.Field(i)); found.IsValid() {
			return found
		}
	}
	return reflect.Value{}
}

// GetByID returns a resolved copy of an active row.
func (r *Repo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	r.mu.RLock()
	row, ok := r.rows[entityID]
	r.mu.RUnlock()

	if !ok || !row.IsAtiva() {
		var zero T
		return zero, apperror.NewNotFound(r.entity, entityID.String())
	}
	return r.resolved(ctx, row)
}

func (r *Repo[T]) resolved(ctx context.Context, row T) (T, error) {
	cp := clone(row)
	if r.resolve != nil {
		if err := r.resolve(ctx, cp); err != nil {
			return cp, fmt.Errorf("resolve %s: %w", r.entity, err)
		}
	}
	return cp, nil
}

// lookup returns a resolved copy of a row, active or not. Resolvers read parents through it.
func (r *Repo[T]) lookup(ctx context.Context, rowID id.ID) (T, bool) {
	r.mu.RLock()
	row, ok := r.rows[rowID]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, false
	}
	cp, err := r.resolved(ctx, row)
	return cp, err == nil
}

// Exists reports whether an active row with the id exists.
func (r *Repo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[entityID]
	return ok && row.IsAtiva(), nil
}

// ExistsInScope reports whether another active row has column = value inside the scope.
func (r *Repo[T]) ExistsInScope(ctx context.Context, q domain.UniqueQuery) (bool, error) {
	if err := r.checkWritable(q.Column); err != nil {
		return false, err
	}
	for col := range q.Scope {
		if err := r.checkWritable(col); err != nil {
			return false, err
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.rows {
		if !row.IsAtiva() {
			continue
		}
		if q.ExcludeID != nil && row.GetID() == *q.ExcludeID {
			continue
		}

		values := storage.StructToMap(row)
		if q.Fold {
			if !strings.EqualFold(fmt.Sprint(storage.Deref(values[q.Column])), fmt.Sprint(storage.Deref(q.Value))) {
				continue
			}
		} else if !equalValues(values[q.Column], q.Value) {
			continue
		}

		inScope := true
		for col, want := range q.Scope {
			if !equalValues(values[col], want) {
				inScope = false
				break
			}
		}
		if inScope {
			return true, nil
		}
	}
	return false, nil
}

// CountActiveBy counts active rows whose column equals value.
func (r *Repo[T]) CountActiveBy(ctx context.Context, column string, value any) (int, error) {
	if err := r.checkWritable(column); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, row := range r.rows {
		if row.IsAtiva() && equalValues(storage.StructToMap(row)[column], value) {
			n++
		}
	}
	return n, nil
}

// SoftDelete flips the active flag of an active row.
func (r *Repo[T]) SoftDelete(ctx context.Context, entityID id.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[entityID]
	if !ok || !row.IsAtiva() {
		return apperror.NewNotFound(r.entity, entityID.String())
	}

	next := clone(row)
	d, ok := any(next).(deactivatable)
	if !ok {
		return fmt.Errorf("%s rows cannot be deactivated", r.entity)
	}
	d.Deactivate(at)
	r.rows[entityID] = next
	return nil
}

// List returns resolved copies of active rows with filtering and pagination.
func (r *Repo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Items: []T{}, Limit: f.Limit, Offset: f.Offset}

	if f.ParentID != nil && r.parentColumn == "" {
		return result, apperror.NewValidation("parentId não se aplica a " + r.entity)
	}
	for _, item := range f.AdvancedFilters {
		if _, ok := r.readable[item.Field]; !ok {
			return result, apperror.NewValidation("filtro inválido").WithDetail("field", item.Field)
		}
		if err := item.Validate(); err != nil {
			return result, apperror.NewValidation(err.Error())
		}
	}
	order, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}

	r.mu.RLock()
	ids := append([]id.ID(nil), r.order...)
	rows := make([]T, 0, len(ids))
	for _, rowID := range ids {
		if row := r.rows[rowID]; row.IsAtiva() {
			rows = append(rows, row)
		}
	}
	r.mu.RUnlock()

	type candidate struct {
		row    T
		values map[string]any
	}
	var matched []candidate
	for _, row := range rows {
		cp, err := r.resolved(ctx, row)
		if err != nil {
			return result, err
		}
		values := storage.StructToMap(cp)
		if r.matches(values, f) {
			matched = append(matched, candidate{row: cp, values: values})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range order {
			c := compareValues(matched[i].values[o.column], matched[j].values[o.column])
			if c == 0 {
				continue
			}
			if o.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	result.TotalCount = int64(len(matched))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	for _, c := range matched[start:end] {
		result.Items = append(result.Items, c.row)
	}
	return result, nil
}

func (r *Repo[T]) matches(values map[string]any, f domain.ListFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		found := false
		for _, col := range r.searchColumns {
			if strings.Contains(strings.ToLower(fmt.Sprint(storage.Deref(values[col]))), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.ParentID != nil && !equalValues(values[r.parentColumn], *f.ParentID) {
		return false
	}

	for _, item := range f.AdvancedFilters {
		if !matchItem(values[item.Field], item) {
			return false
		}
	}
	return true
}

func matchItem(v any, item filter.Item) bool {
	switch item.Operator {
	case filter.Equal:
		return equalValues(v, item.Value)
	case filter.NotEqual:
		return !equalValues(v, item.Value)
	case filter.InList:
		return inList(v, item.Value)
	case filter.NotInList:
		return !inList(v, item.Value)
	case filter.Less:
		return compareValues(v, item.Value) < 0
	case filter.LessOrEqual:
		return compareValues(v, item.Value) <= 0
	case filter.Greater:
		return compareValues(v, item.Value) > 0
	case filter.GreaterOrEqual:
		return compareValues(v, item.Value) >= 0
	case filter.IsNull:
		return storage.Deref(v) == nil
	case filter.IsNotNull:
		return storage.Deref(v) != nil
	case filter.Contains, filter.NotContains:
		has := strings.Contains(
			strings.ToLower(fmt.Sprint(storage.Deref(v))),
			strings.ToLower(fmt.Sprint(item.Value)),
		)
		return has == (item.Operator == filter.Contains)
	}
	return false
}

func inList(v any, list any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return equalValues(v, list)
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(v, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

type orderClause struct {
	column string
	desc   bool
}

func (r *Repo[T]) parseOrderBy(orderBy string) ([]orderClause, error) {
	if strings.TrimSpace(orderBy) == "" {
		orderBy = r.defaultOrder
	}

	var clauses []orderClause
	for _, part := range strings.Split(orderBy, ",") {
		field := strings.TrimSpace(part)
		desc := strings.HasPrefix(field, "-")
		field = strings.TrimLeft(field, "+-")
		if _, ok := r.readable[field]; !ok {
			return nil, apperror.NewValidation("orderBy inválido").WithDetail("orderBy", orderBy)
		}
		clauses = append(clauses, orderClause{column: field, desc: desc})
	}
	return clauses, nil
}

func (r *Repo[T]) checkWritable(column string) error {
	if _, ok := r.writable[column]; !ok {
		return fmt.Errorf("%s: unknown column %q", r.entity, column)
	}
	return nil
}
