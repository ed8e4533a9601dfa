// Package audit records a snapshot of every committed change of a catalog node.
package audit

import (
	"context"
	"encoding/json"
	"time"

	appctx "retaguarda/internal/core/context"
	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
	"retaguarda/internal/domain"
	"retaguarda/pkg/logger"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one audit record.
type Entry struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	Action     Action          `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot"`
	RequestID  string          `json:"requestId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Store persists and reads audit entries.
type Store interface {
	Record(ctx context.Context, entry Entry) error

	// History returns the newest entries of an entity first
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// NewEntry builds an entry from the caller in ctx and a JSON snapshot of the node.
func NewEntry(ctx context.Context, entityType string, action Action, node entity.Identifiable) (Entry, error) {
	snapshot, err := json.Marshal(node)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   node.GetID(),
		Action:     action,
		UserID:     appctx.GetUserID(ctx),
		Snapshot:   snapshot,
		RequestID:  appctx.GetRequestID(ctx),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Attach registers after-hooks that record create, update and delete of a kind.
// Recording failures are logged and never undo the committed change.
func Attach[T entity.Identifiable](hooks *domain.HookRegistry[T], entityType string, store Store) {
	record := func(action Action) domain.Hook[T] {
		return func(ctx context.Context, node T) error {
			entry, err := NewEntry(ctx, entityType, action, node)
			if err == nil {
				err = store.Record(ctx, entry)
			}
			if err != nil {
				logger.Warn(ctx, "failed to record audit entry",
					"entity", entityType,
					"entity_id", node.GetID(),
					"action", string(action),
					"error", err,
				)
			}
			return nil
		}
	}

	hooks.OnAfterCreate(record(ActionCreate))
	hooks.OnAfterUpdate(record(ActionUpdate))
	hooks.OnAfterDelete(record(ActionDelete))
}
