package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("BROWSE_PAGE_SIZE", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=postgres://db/catalog\nBROWSE_PAGE_SIZE=25\n"), 0o600))
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("BROWSE_PAGE_SIZE", "")
	os.Unsetenv("BROWSE_PAGE_SIZE")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/catalog", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DATABASE_URL")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadRejectsBadPageSizes(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/catalog")
	t.Setenv("BROWSE_PAGE_SIZE", "50")
	t.Setenv("BROWSE_MAX_PAGE_SIZE", "20")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
