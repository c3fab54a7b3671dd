package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDriverDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "Asia/Kolkata", cfg.App.Timezone)
	require.NotNil(t, cfg.App.Location)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Storage.ReadTimeout)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "STORAGE_DRIVER=memory\nAUTH_JWT_SECRET=from-file\nREDIS_URL=redis://localhost:6379/1\nHTTP_CORS_ORIGINS=https://a.example, https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	for _, key := range []string{"STORAGE_DRIVER", "AUTH_JWT_SECRET", "REDIS_URL", "HTTP_CORS_ORIGINS"} {
		key := key
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}
	t.Setenv("AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "svc")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://svc:pw@db.internal:5432/attendance?sslmode=require", cfg.Database.URL)
}

func TestValidate_Errors(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_TIMEZONE")
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
}

func TestValidate_MemoryNotAllowedInProduction(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	_, err := Load(filepath.Join(t.TempDir(), "none.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed in production")
}
