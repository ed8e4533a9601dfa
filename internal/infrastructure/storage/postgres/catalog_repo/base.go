// Package catalog_repo provides the PostgreSQL repositories of the catalog hierarchy.
// Writes go to the kind's table; reads go through its vw_* view, which resolves
// parent names and ancestor ids.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"retaguarda/internal/core/apperror"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain"
	"retaguarda/internal/domain/filter"
	"retaguarda/internal/infrastructure/storage"
	"retaguarda/internal/infrastructure/storage/postgres"
)

// PostgreSQL error codes mapped to conflicts.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Config describes one kind's storage.
type Config[T any] struct {
	// Table receives writes
	Table string

	// View serves reads; defaults to Table
	View string

	// Entity is the kind name used in NotFound errors
	Entity string

	// ParentColumn backs ListFilter.ParentID
	ParentColumn string

	// SearchColumns back ListFilter.Search; defaults to codigo and nome
	SearchColumns []string

	// DefaultOrder is used when ListFilter.OrderBy is empty; defaults to "nome ASC"
	DefaultOrder string

	New func() T
}

// Base provides the storage operations shared by every kind.
type Base[T entity.Identifiable] struct {
	txm           *postgres.TxManager
	table         string
	view          string
	entity        string
	parentColumn  string
	searchColumns []string
	defaultOrder  string
	cols          storage.Columns
	readable      map[string]struct{}
	writable      map[string]struct{}
	newFn         func() T
}

// NewBase creates the base repository of a kind.
func NewBase[T entity.Identifiable](txm *postgres.TxManager, cfg Config[T]) *Base[T] {
	cols := storage.ExtractColumns[T]()

	r := &Base[T]{
		txm:           txm,
		table:         cfg.Table,
		view:          cfg.View,
		entity:        cfg.Entity,
		parentColumn:  cfg.ParentColumn,
		searchColumns: cfg.SearchColumns,
		defaultOrder:  cfg.DefaultOrder,
		cols:          cols,
		readable:      toSet(cols.Read),
		writable:      toSet(cols.Write),
		newFn:         cfg.New,
	}
	if r.view == "" {
		r.view = r.table
	}
	if r.searchColumns == nil {
		r.searchColumns = []string{"codigo", "nome"}
	}
	if r.defaultOrder == "" {
		r.defaultOrder = "nome ASC"
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

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *Base[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *Base[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// activeSelect is the only entry point for reads: it restricts every query to active rows.
func (r *Base[T]) activeSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols.Read...).
		From(r.view).
		Where(squirrel.Eq{"ativa": true})
}

// Create inserts a new row.
func (r *Base[T]) Create(ctx context.Context, e T) error {
	sql, args, err := r.buildInsert(e)
	if err != nil {
		return err
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteErr(err, "insert")
	}
	return nil
}

func (r *Base[T]) buildInsert(e T) (string, []any, error) {
	data := r.writeMap(e)
	if len(data) == 0 {
		return "", nil, fmt.Errorf("no db tags found in %T", e)
	}
	sql, args, err := r.Builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return sql, args, nil
}

// Update modifies an active row in place. Identity, activity and creation time are never written.
func (r *Base[T]) Update(ctx context.Context, e T) error {
	sql, args, err := r.buildUpdate(e)
	if err != nil {
		return err
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteErr(err, "update")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, e.GetID().String())
	}
	return nil
}

func (r *Base[T]) buildUpdate(e T) (string, []any, error) {
	data := r.writeMap(e)
	delete(data, "id")
	delete(data, "ativa")
	delete(data, "data_criacao")
	if len(data) == 0 {
		return "", nil, fmt.Errorf("no updatable columns in %T", e)
	}

	sql, args, err := r.Builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": e.GetID()}).
		Where(squirrel.Eq{"ativa": true}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build update: %w", err)
	}
	return sql, args, nil
}

// writeMap keeps only writable columns of e.
func (r *Base[T]) writeMap(e T) map[string]any {
	data := storage.StructToMap(e)
	for col := range data {
		if _, ok := r.writable[col]; !ok {
			delete(data, col)
		}
	}
	return data
}

// GetByID returns an active row through the read view.
func (r *Base[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e := r.newFn()

	sql, args, err := r.activeSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.entity, entityID.String())
		}
		return e, fmt.Errorf("get %s by id: %w", r.entity, err)
	}
	return e, nil
}

// Exists reports whether an active row with the id exists.
func (r *Base[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.table).
		Where(squirrel.Eq{"id": entityID, "ativa": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	return r.queryExists(ctx, sql, args)
}

// ExistsInScope reports whether another active row has column = value inside the scope.
func (r *Base[T]) ExistsInScope(ctx context.Context, q domain.UniqueQuery) (bool, error) {
	sql, args, err := r.buildExistsInScope(q)
	if err != nil {
		return false, err
	}
	return r.queryExists(ctx, sql, args)
}

func (r *Base[T]) buildExistsInScope(q domain.UniqueQuery) (string, []any, error) {
	if err := r.checkWritable(q.Column); err != nil {
		return "", nil, err
	}

	b := r.Builder().
		Select("1").
		From(r.table).
		Where(squirrel.Eq{"ativa": true})

	if q.Fold {
		b = b.Where(fmt.Sprintf("lower(%s) = lower(?)", q.Column), q.Value)
	} else {
		b = b.Where(squirrel.Eq{q.Column: q.Value})
	}

	if len(q.Scope) > 0 {
		for col := range q.Scope {
			if err := r.checkWritable(col); err != nil {
				return "", nil, err
			}
		}
		b = b.Where(squirrel.Eq(q.Scope))
	}

	if q.ExcludeID != nil {
		b = b.Where(squirrel.NotEq{"id": *q.ExcludeID})
	}

	sql, args, err := b.Limit(1).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build unique check: %w", err)
	}
	return sql, args, nil
}

// CountActiveBy counts active rows whose column equals value.
func (r *Base[T]) CountActiveBy(ctx context.Context, column string, value any) (int, error) {
	sql, args, err := r.buildCount(column, value)
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s by %s: %w", r.entity, column, err)
	}
	return n, nil
}

func (r *Base[T]) buildCount(column string, value any) (string, []any, error) {
	if err := r.checkWritable(column); err != nil {
		return "", nil, err
	}
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(r.table).
		Where(squirrel.Eq{"ativa": true}).
		Where(squirrel.Eq{column: value}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build count: %w", err)
	}
	return sql, args, nil
}

// SoftDelete flips the active flag of an active row.
func (r *Base[T]) SoftDelete(ctx context.Context, entityID id.ID, at time.Time) error {
	sql, args, err := r.buildSoftDelete(entityID, at)
	if err != nil {
		return err
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", r.entity, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entity, entityID.String())
	}
	return nil
}

func (r *Base[T]) buildSoftDelete(entityID id.ID, at time.Time) (string, []any, error) {
	sql, args, err := r.Builder().
		Update(r.table).
		Set("ativa", false).
		Set("data_ultima_alteracao", at.UTC()).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"ativa": true}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build soft delete: %w", err)
	}
	return sql, args, nil
}

// List returns active rows with filtering and pagination. A non-positive limit returns every row.
func (r *Base[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q, err := r.listQuery(f)
	if err != nil {
		return result, err
	}

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.entity, err)
	}

	orderBy, err := r.parseOrderBy(f.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy...)
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.entity, err)
	}
	return result, nil
}

// listQuery builds the filtered select without ordering and pagination.
func (r *Base[T]) listQuery(f domain.ListFilter) (squirrel.SelectBuilder, error) {
	q := r.activeSelect()

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchColumns))
		for _, col := range r.searchColumns {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	if f.ParentID != nil {
		if r.parentColumn == "" {
			return q, apperror.NewValidation("parentId não se aplica a " + r.entity)
		}
		q = q.Where(squirrel.Eq{r.parentColumn: *f.ParentID})
	}

	return r.applyAdvancedFilters(q, f.AdvancedFilters)
}

// applyAdvancedFilters applies column filters; columns are whitelisted against the read view.
func (r *Base[T]) applyAdvancedFilters(q squirrel.SelectBuilder, items []filter.Item) (squirrel.SelectBuilder, error) {
	for _, item := range items {
		if _, ok := r.readable[item.Field]; !ok {
			return q, apperror.NewValidation("filtro inválido").WithDetail("field", item.Field)
		}
		if err := item.Validate(); err != nil {
			return q, apperror.NewValidation(err.Error())
		}

		switch item.Operator {
		case filter.Equal, filter.InList:
			q = q.Where(squirrel.Eq{item.Field: item.Value})
		case filter.NotEqual, filter.NotInList:
			q = q.Where(squirrel.NotEq{item.Field: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{item.Field: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{item.Field: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{item.Field: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{item.Field: item.Value})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{item.Field: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{item.Field: nil})
		case filter.Contains:
			q = q.Where(squirrel.ILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		case filter.NotContains:
			q = q.Where(squirrel.NotILike{item.Field: fmt.Sprintf("%%%v%%", item.Value)})
		}
	}
	return q, nil
}

// parseOrderBy accepts "col", "-col" and comma-separated lists of readable columns.
func (r *Base[T]) parseOrderBy(orderBy string) ([]string, error) {
	if strings.TrimSpace(orderBy) == "" {
		return []string{r.defaultOrder}, nil
	}

	var clauses []string
	for _, part := range strings.Split(orderBy, ",") {
		field := strings.TrimSpace(part)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			direction = "DESC"
			field = strings.TrimPrefix(field, "-")
		} else {
			field = strings.TrimPrefix(field, "+")
		}

		if _, ok := r.readable[field]; !ok || field == "" {
			return nil, apperror.NewValidation("orderBy inválido").WithDetail("orderBy", orderBy)
		}
		clauses = append(clauses, field+" "+direction)
	}
	return clauses, nil
}

func (r *Base[T]) checkWritable(column string) error {
	if _, ok := r.writable[column]; !ok {
		return fmt.Errorf("%s: unknown column %q", r.table, column)
	}
	return nil
}

func (r *Base[T]) queryExists(ctx context.Context, sql string, args []any) (bool, error) {
	var one int
	err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.entity, err)
	}
	return true, nil
}

// mapWriteErr turns constraint violations into conflicts. The partial unique indexes
// are the backstop for concurrent creates that both pass the application check.
func (r *Base[T]) mapWriteErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.NewConflict(fmt.Sprintf("já existe %s ativo(a) com os mesmos dados", r.entity)).
				WithDetail("entity", r.entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgForeignKeyViolation:
			return apperror.NewConflict(fmt.Sprintf("%s referencia um registro inexistente", r.entity)).
				WithDetail("entity", r.entity).
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("%s %s: %w", op, r.table, err)
}
