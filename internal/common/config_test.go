package common

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PROCUREMENT_DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, []string{"openai", "openrouter"}, cfg.LLM.Providers)
	assert.Equal(t, 30000, cfg.LLM.MaxPromptChars)
	assert.Equal(t, time.Second, cfg.Pipeline.ItemDelay)
	assert.Equal(t, 100, cfg.Pipeline.MinTextChars)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.SnapshotTTL)
	assert.Equal(t, 2, cfg.Queue.Workers)
	assert.Equal(t, 2*time.Second, cfg.Ingest.Debounce)
	assert.Empty(t, cfg.Ingest.InboxDir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PROCUREMENT_DATABASE_DRIVER", "sqlite")
	t.Setenv("PROCUREMENT_LLM_PROVIDERS", "openrouter, OpenAI")
	t.Setenv("PROCUREMENT_PIPELINE_ITEM_DELAY", "250ms")
	t.Setenv("PROCUREMENT_QUEUE_WORKERS", "4")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"openrouter", "openai"}, cfg.LLM.Providers)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.ItemDelay)
	assert.Equal(t, 4, cfg.Queue.Workers)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  driver: sqlite
  dsn: "file:test.db"
header:
  default_supplier:
    name: "ACME SEGURANÇA LTDA"
    tax_id: "12.345.678/0001-90"
    markers: ["ACME"]
  authority_tax_ids: ["98.765.432/0001-10"]
ingest:
  inbox_dir: /srv/inbox
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, "ACME SEGURANÇA LTDA", cfg.Header.DefaultSupplier.Name)
	assert.Equal(t, []string{"98.765.432/0001-10"}, cfg.Header.AuthorityTaxIDs)
	assert.Equal(t, "/srv/inbox", cfg.Ingest.InboxDir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database: [oops"), 0o644))
	_, err = LoadConfig(dir)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "postgres", DSN: "postgres://localhost/procurement"},
			LLM:      LLMConfig{Providers: []string{"openai"}},
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"sqlite without dsn", func(c *Config) { c.Database = DatabaseConfig{Driver: "sqlite"} }, true},
		{"postgres without dsn", func(c *Config) { c.Database.DSN = "" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"unknown provider", func(c *Config) { c.LLM.Providers = []string{"anthropic"} }, false},
		{"supplier without tax id", func(c *Config) { c.Header.DefaultSupplier = entity.DefaultSupplier{Name: "ACME"} }, false},
		{"negative delay", func(c *Config) { c.Pipeline.ItemDelay = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	logger := InitLoggerTo(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("pipeline.document.start")
	logger.Warn("pipeline.document.model_unavailable", "provider", "openai")
	out := buf.String()
	assert.NotContains(t, out, "pipeline.document.start")
	assert.Contains(t, out, `"provider":"openai"`)
}
