// Package entity provides base types for all domain entities.
package entity

import (
	"context"
	"time"

	"retaguarda/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, a validation AppError with field details otherwise.
	Validate(ctx context.Context) error
}

// Identifiable is implemented by every persisted row.
type Identifiable interface {
	GetID() id.ID
	IsAtiva() bool
}

// BaseEntity contains the fields shared by every row of the hierarchy.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Ativa is the soft-delete flag. Inactive rows are invisible to every default read.
	Ativa bool `db:"ativa" json:"ativa"`

	DataCriacao         time.Time  `db:"data_criacao" json:"dataCriacao"`
	DataUltimaAlteracao *time.Time `db:"data_ultima_alteracao" json:"dataUltimaAlteracao,omitempty"`
}

// NewBaseEntity creates an active BaseEntity with a generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:          id.New(),
		Ativa:       true,
		DataCriacao: time.Now().UTC(),
	}
}

// GetID returns the primary key.
func (b *BaseEntity) GetID() id.ID {
	return b.ID
}

// IsAtiva reports whether the row is active.
func (b *BaseEntity) IsAtiva() bool {
	return b.Ativa
}

// Touch stamps the last update time. It never changes Ativa.
func (b *BaseEntity) Touch(at time.Time) {
	t := at.UTC()
	b.DataUltimaAlteracao = &t
}

// Deactivate marks the row as logically deleted.
func (b *BaseEntity) Deactivate(at time.Time) {
	b.Ativa = false
	b.Touch(at)
}
