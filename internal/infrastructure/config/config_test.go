package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RETAGUARDA_STORAGE_DRIVER", "memory")
	t.Setenv("RETAGUARDA_JWT_ENABLED", "false")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "retaguarda", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "retaguarda:", cfg.Redis.Prefix)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9000
database:
  dsn: postgres://file/db
jwt:
  secret: from-file
`), 0o600))

	t.Setenv("RETAGUARDA_APP_PORT", "9100")
	t.Setenv("RETAGUARDA_DATABASE_STATEMENT_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "postgres://file/db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, cfg.Database.StatementTimeout)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without dsn", env: map[string]string{"RETAGUARDA_JWT_ENABLED": "false"}},
		{name: "unknown driver", env: map[string]string{"RETAGUARDA_STORAGE_DRIVER": "sqlite", "RETAGUARDA_JWT_ENABLED": "false"}},
		{name: "jwt without secret", env: map[string]string{"RETAGUARDA_STORAGE_DRIVER": "memory", "RETAGUARDA_APP_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			t.Chdir(t.TempDir())

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_DevelopmentJWTSecret(t *testing.T) {
	t.Setenv("RETAGUARDA_STORAGE_DRIVER", "memory")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.JWT.Secret)
}
