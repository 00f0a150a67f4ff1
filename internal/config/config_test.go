package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/txn-ingest/internal/category"
	"github.com/insightdelivered/txn-ingest/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
	assert.False(t, cfg.Remote.Enabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	path := writeFile(t, "ingest.yaml", `
logLevel: debug
currency: GBP
remote:
  model: gemini-2.0-flash
  workers: 4
`)
	t.Setenv("INGEST_CURRENCY", "EUR")
	t.Setenv("INGEST_GEMINI_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "EUR", cfg.Currency, "environment wins over the file")
	assert.Equal(t, "gemini-2.0-flash", cfg.Remote.Model)
	assert.Equal(t, 4, cfg.Remote.Workers)
	assert.Equal(t, 32, cfg.Remote.QueueSize, "unset values keep defaults")
	assert.True(t, cfg.Remote.Enabled())
}

func TestLoadInlineConfig(t *testing.T) {
	t.Setenv(ConfigEnvVar, "listenAddr: \":9090\"\nlogFormat: json\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadBadYAML(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	path := writeFile(t, "bad.yaml", "logLevel: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadTaxonomy(t *testing.T) {
	t.Run("empty path is built in", func(t *testing.T) {
		tax, err := LoadTaxonomy("")
		require.NoError(t, err)
		assert.Equal(t, category.DefaultTaxonomy(), tax)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeFile(t, "taxonomy.yaml", "wants:\n  - Coffee\n  - Books\n")

		tax, err := LoadTaxonomy(path)
		require.NoError(t, err)
		require.Len(t, tax, 4)
		assert.Equal(t, []string{"Coffee", "Books"}, tax.SubCategories(models.CategoryWants))
		assert.Equal(t, category.DefaultTaxonomy().SubCategories(models.CategoryNeeds), tax.SubCategories(models.CategoryNeeds))

		c, sub := category.New(tax).Resolve("Coffee")
		assert.Equal(t, models.CategoryWants, c)
		assert.Equal(t, "Coffee", sub)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
