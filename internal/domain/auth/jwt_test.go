package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "retaguarda/internal/core/context"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken(appctx.UserContext{
		UserID:      "u-1",
		EmpresaID:   "e-1",
		FilialID:    "f-1",
		Permissions: []string{"cadastro:produto:read"},
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "e-1", user.EmpresaID)
	assert.Equal(t, "f-1", user.FilialID)
	assert.True(t, user.HasPermission("cadastro:produto:read"))
	assert.False(t, user.HasPermission("cadastro:produto:delete"))
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService(DefaultJWTConfig("a")).GenerateAccessToken(appctx.UserContext{UserID: "u"})
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("b")).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := svc.GenerateAccessToken(appctx.UserContext{UserID: "u"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RequiresUserID(t *testing.T) {
	_, _, err := NewJWTService(DefaultJWTConfig("secret")).GenerateAccessToken(appctx.UserContext{})
	assert.Error(t, err)
}
