// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"slices"
)

// UserContext contains the caller identity decoded from the access token.
// EmpresaID and FilialID scope "list all" queries for non-admin callers.
type UserContext struct {
	UserID      string
	Email       string
	EmpresaID   string
	FilialID    string
	Roles       []string
	Permissions []string
	IsAdmin     bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetEmpresaID returns the caller's empresa or empty string.
func GetEmpresaID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.EmpresaID
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// HasPermission checks a permission; admins have all of them.
func (u *UserContext) HasPermission(permission string) bool {
	if u.IsAdmin {
		return true
	}
	return slices.Contains(u.Permissions, permission)
}
