package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bpa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
customer: Acme Corp
database:
  path: /var/lib/bpa/acme.db
analysis:
  workers: 8
output:
  report: acme-report.html
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", cfg.Customer)
	assert.Equal(t, "/var/lib/bpa/acme.db", cfg.Database.Path)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, "acme-report.html", cfg.Output.Report)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)

	t.Run("unset fields keep defaults", func(t *testing.T) {
		assert.Equal(t, "code-units.jsonl", cfg.Output.JSONL)
		assert.Equal(t, "findings.sarif", cfg.Output.SARIF)
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
customer: Acme Corp
database:
  path: file.db
`)
	t.Setenv("BPA_CUSTOMER", "Globex")
	t.Setenv("BPA_DB", "env.db")
	t.Setenv("BPA_WORKERS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Globex", cfg.Customer)
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Analysis.Workers)
}

func TestLoad_InvalidWorkersEnvIgnored(t *testing.T) {
	path := writeConfig(t, `analysis: {workers: 4}`)
	t.Setenv("BPA_WORKERS", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analysis.Workers)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "bp-analyzer.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Customer)

	t.Run("env applies without a file", func(t *testing.T) {
		t.Setenv("BPA_LOG_LEVEL", "trace")
		assert.Equal(t, "trace", Default().Log.Level)
	})
}
