package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retaguarda/internal/core/apperror"
	appctx "retaguarda/internal/core/context"
	"retaguarda/pkg/logger"
)

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		status := StatusOf(err)

		appErr, ok := apperror.AsAppError(err)
		if !ok || status == http.StatusInternalServerError {
			logger.Error(ctx, "request failed",
				"error", err,
				"path", c.Request.URL.Path,
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    apperror.CodeInternal,
				"message": "Erro interno do servidor",
				"details": map[string]any{"requestId": appctx.GetRequestID(ctx)},
			})
			return
		}

		c.JSON(status, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		})
	}
}
