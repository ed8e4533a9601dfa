// Package memory is the in-process storage driver. It implements the same repository
// and transaction contracts as the postgres driver and is used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"retaguarda/internal/core/tx"
)

var (
	_ tx.Manager         = (*TxManager)(nil)
	_ tx.ReadOnlyManager = (*TxManager)(nil)
)

type txKey struct{}

// TxManager serializes units of work. There is no rollback: services perform
// every check before their single write, so a failed unit writes nothing.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

// RunInTransaction runs fn holding the store lock. Nested calls reuse the outer unit.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// ReadOnly runs fn like RunInTransaction.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}
