// Package tx provides transaction management abstractions.
// Domain services depend on Manager; implementations live in the storage drivers
// (postgres and memory).
package tx

import (
	"context"
)

// Manager runs a unit of work.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back, otherwise it is committed.
	// Nested calls reuse the transaction already carried by ctx.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
