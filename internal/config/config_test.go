package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for key := range envKeys {
		if _, ok := os.LookupEnv(key); ok {
			t.Setenv(key, "")
		}
	}
}

func TestLoadWithDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "production", cfg.Sanity.Dataset)
	require.Equal(t, "2024-01-01", cfg.Sanity.APIVersion)
	require.Equal(t, "129297501", cfg.Ecwid.StoreID)
	require.Equal(t, "https://app.business.shop/script.js", cfg.Ecwid.ScriptBase)
	require.False(t, cfg.SanityConfigured(), "no project id means fallback-only content")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SANITY_PROJECT_ID", " abc123 ")
	t.Setenv("SANITY_API_VERSION", "v2025-02-19")
	t.Setenv("SANITY_USE_CDN", "true")
	t.Setenv("SANITY_CACHE_TTL", "90s")
	t.Setenv("ECWID_STORE_ID", "42")
	t.Setenv("CRANKS_WEB_BASE_URL", "https://example.com/")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "abc123", cfg.Sanity.ProjectID)
	require.Equal(t, "2025-02-19", cfg.Sanity.APIVersion)
	require.True(t, cfg.Sanity.UseCDN)
	require.Equal(t, 90*time.Second, cfg.Sanity.CacheTTL)
	require.Equal(t, "42", cfg.Ecwid.StoreID)
	require.Equal(t, "https://example.com", cfg.Site.BaseURL)
	require.True(t, cfg.SanityConfigured())
}

func TestAddrTakesPrecedenceOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("CRANKS_WEB_ADDR", "127.0.0.1:7000")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cranks.yaml")
	err := os.WriteFile(path, []byte(`
site:
  name: Cranks Test
sanity:
  project_id: fromfile
  dataset: staging
ecwid:
  store_id: "777"
`), 0o644)
	require.NoError(t, err)
	t.Setenv("SANITY_DATASET", "preview")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Cranks Test", cfg.Site.Name)
	require.Equal(t, "fromfile", cfg.Sanity.ProjectID)
	require.Equal(t, "preview", cfg.Sanity.Dataset, "env overlays the file")
	require.Equal(t, "777", cfg.Ecwid.StoreID)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "Cranks Bike Shop", cfg.Site.Name)
}

func TestValidateRejectsMalformedValues(t *testing.T) {
	cfg := Default()
	cfg.Ecwid.StoreID = ""
	cfg.Site.BaseURL = "not a url"
	cfg.Sanity.Timeout = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, IsValidationError(err))
	require.Contains(t, err.Error(), "ecwid.store_id")
	require.Contains(t, err.Error(), "site.base_url")
	require.Contains(t, err.Error(), "sanity.timeout")
}

func TestValidateRequestTimeoutWithinWriteTimeout(t *testing.T) {
	cfg := Default()
	require.Less(t, cfg.Server.RequestTimeout, cfg.Server.WriteTimeout)
	require.NoError(t, cfg.Validate())

	cfg.Server.RequestTimeout = cfg.Server.WriteTimeout
	err := cfg.Validate()
	require.True(t, IsValidationError(err))
	require.Contains(t, err.Error(), "server.request_timeout")

	// Either timeout may be disabled on its own.
	cfg.Server.WriteTimeout = 0
	require.NoError(t, cfg.Validate())
}
