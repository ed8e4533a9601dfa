// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"retaguarda/internal/core/entity"
	"retaguarda/internal/core/id"
)

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ItemsResponse wraps unpaginated collections (tree, ficha técnica, audit history).
type ItemsResponse struct {
	Items any `json:"items"`
}

// --- Node DTOs ---

// NodeRequest contains the fields shared by every create/update body.
type NodeRequest struct {
	Codigo    string  `json:"codigo" binding:"required,max=20"`
	Nome      string  `json:"nome" binding:"required,max=150"`
	Descricao *string `json:"descricao" binding:"omitempty,max=500"`
}

// NodeResponse contains the fields shared by every node response.
type NodeResponse struct {
	ID                  id.ID      `json:"id"`
	Codigo              string     `json:"codigo"`
	Nome                string     `json:"nome"`
	Descricao           *string    `json:"descricao,omitempty"`
	Ativa               bool       `json:"ativa"`
	DataCriacao         time.Time  `json:"dataCriacao"`
	DataUltimaAlteracao *time.Time `json:"dataUltimaAlteracao,omitempty"`
}

// FromNode creates NodeResponse from entity.Node.
func FromNode(n entity.Node) NodeResponse {
	return NodeResponse{
		ID:                  n.ID,
		Codigo:              n.Codigo,
		Nome:                n.Nome,
		Descricao:           n.Descricao,
		Ativa:               n.Ativa,
		DataCriacao:         n.DataCriacao,
		DataUltimaAlteracao: n.DataUltimaAlteracao,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
