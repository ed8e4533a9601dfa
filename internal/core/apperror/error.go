// Package apperror provides structured error handling for the whole service.
// Every expected failure of a lifecycle operation is an *AppError carrying an explicit Kind,
// so callers branch on the kind instead of matching message text.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an error for callers. It is the only thing transport code should branch on.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindSystem       Kind = "system"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error codes
const (
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	CodeConflict          = "CONFLICT"
	CodeDuplicate         = "DUPLICATE_ENTRY"
	CodeDependencyBlocked = "DEPENDENCY_BLOCKED"
)

// AppError is the standard error type for the platform.
type AppError struct {
	// Kind is the outcome tag (not found, validation, conflict, system...)
	Kind Kind `json:"-"`

	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, blocking children, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// Fields returns the field→message map of a validation error, or nil.
func (e *AppError) Fields() map[string]string {
	if e.Details == nil {
		return nil
	}
	if f, ok := e.Details["fields"].(map[string]string); ok {
		return f
	}
	return nil
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewFieldValidation creates a validation error for a single field.
func NewFieldValidation(field, message string) *AppError {
	return NewValidationFields(map[string]string{field: message})
}

// NewValidationFields creates a validation error from a set of field→message entries.
// The top-level message joins the entries in a stable order.
func NewValidationFields(fields map[string]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}

	return NewValidation(strings.Join(msgs, "; ")).WithDetail("fields", fields)
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s não encontrado(a)", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field string, value any) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("já existe %s ativo(a) com este(a) %s", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// Blocker describes one kind of active child preventing a deactivation.
type Blocker struct {
	Kind    string `json:"kind"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// NewDependencyBlocked creates the conflict returned when active children block a soft delete.
func NewDependencyBlocked(entity string, id any, blockers []Blocker) *AppError {
	msgs := make([]string, 0, len(blockers))
	for _, b := range blockers {
		msgs = append(msgs, b.Message)
	}
	return &AppError{
		Kind:       KindConflict,
		Code:       CodeDependencyBlocked,
		Message:    fmt.Sprintf("não é possível excluir %s: possui %s", entity, strings.Join(msgs, "; ")),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id, "blockers": blockers},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Kind:       KindSystem,
		Code:       CodeInternal,
		Message:    "Erro interno do servidor",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Kind:       KindUnauthorized,
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Kind:       KindForbidden,
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of any error. Errors that are not AppErrors are system faults.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindSystem
}

// IsNotFound reports whether err is a not-found outcome.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation outcome.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is a conflict outcome (duplicate or dependency blocked).
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsDependencyBlocked reports whether err is a soft-delete blocked by active children.
func IsDependencyBlocked(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeDependencyBlocked
	}
	return false
}
