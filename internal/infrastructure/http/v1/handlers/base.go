// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"retaguarda/internal/core/apperror"
	appctx "retaguarda/internal/core/context"
	"retaguarda/internal/core/id"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("corpo da requisição inválido").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers the error on the Gin context and aborts the request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery parses integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	val := c.Query(key)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}

// ParamID parses a path parameter as an id, reporting a validation error on failure.
func (h *BaseHandler) ParamID(c *gin.Context, key string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(key))
	if err != nil {
		h.Error(c, apperror.NewFieldValidation(key, "identificador inválido"))
		return id.Nil(), false
	}
	return parsed, true
}

// QueryID parses an optional query parameter as an id.
func (h *BaseHandler) QueryID(c *gin.Context, key string) (*id.ID, bool) {
	parsed, err := id.ParseOptional(c.Query(key))
	if err != nil {
		h.Error(c, apperror.NewFieldValidation(key, "identificador inválido"))
		return nil, false
	}
	return parsed, true
}

// User returns the caller installed by the auth middleware.
func (h *BaseHandler) User(c *gin.Context) *appctx.UserContext {
	return appctx.GetUser(c.Request.Context())
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
