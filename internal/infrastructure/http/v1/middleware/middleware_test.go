package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"retaguarda/internal/core/apperror"
	appctx "retaguarda/internal/core/context"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperror.NewNotFound("empresa", "x"), http.StatusNotFound},
		{apperror.NewValidation("bad"), http.StatusBadRequest},
		{apperror.NewDuplicate("empresa", "cnpj", "1"), http.StatusConflict},
		{apperror.NewDependencyBlocked("agrupamento", "x", nil), http.StatusConflict},
		{apperror.NewUnauthorized("no"), http.StatusUnauthorized},
		{apperror.NewForbidden("no"), http.StatusForbidden},
		{apperror.NewInternal(errors.New("db")), http.StatusInternalServerError},
		{errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func TestErrorHandler_HidesSystemErrors(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
}

func TestRecovery_WritesInternalError(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), ErrorHandler())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

type stubValidator struct {
	user *appctx.UserContext
}

func (s stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return s.user, nil
}

func TestAuthAndPermission(t *testing.T) {
	user := &appctx.UserContext{UserID: "u", Permissions: []string{"cadastro:empresa:read"}}

	r := gin.New()
	r.Use(ErrorHandler(), Auth(stubValidator{user: user}))
	r.GET("/read", RequirePermission("cadastro:empresa:read"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/delete", RequirePermission("cadastro:empresa:delete"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/read", "", http.StatusUnauthorized},
		{"bad scheme", "/read", "Basic good", http.StatusUnauthorized},
		{"bad token", "/read", "Bearer bad", http.StatusUnauthorized},
		{"granted", "/read", "Bearer good", http.StatusOK},
		{"forbidden", "/delete", "Bearer good", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestTrace_EchoesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Trace())
	r.GET("/", func(c *gin.Context) {
		assert.Equal(t, "req-1", appctx.GetRequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}
