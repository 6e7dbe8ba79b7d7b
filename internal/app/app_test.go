package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProviders(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := common.LLMConfig{
		Providers:  []string{"openrouter", "openai"},
		OpenAI:     common.ProviderConfig{APIKey: "sk-test"},
		OpenRouter: common.ProviderConfig{APIKey: "or-test"},
	}
	got := Providers(cfg, discardLogger())
	require.Len(t, got, 2)
	assert.Equal(t, "openrouter", got[0].Name())
	assert.Equal(t, "openai", got[1].Name())

	cfg.OpenRouter.APIKey = ""
	got = Providers(cfg, discardLogger())
	require.Len(t, got, 1)
	assert.Equal(t, "openai", got[0].Name())

	t.Setenv("OPENROUTER_API_KEY", "from-env")
	assert.Len(t, Providers(cfg, discardLogger()), 2)
}

func TestHeaderConfig(t *testing.T) {
	hc := HeaderConfig(common.HeaderConfig{
		DefaultSupplier: entity.DefaultSupplier{Name: "ACME", TaxID: "12.345.678/0001-90"},
		AuthorityTaxIDs: []string{"98.765.432/0001-10"},
	})
	assert.Equal(t, "ACME", hc.DefaultSupplier.Name)
	assert.Equal(t, []string{"98.765.432/0001-10"}, hc.AuthorityTaxIDs)
}

func TestNew_SQLite(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := &common.Config{
		Database: common.DatabaseConfig{Driver: "sqlite", DSN: "file:" + filepath.Join(t.TempDir(), "app.db")},
		LLM:      common.LLMConfig{Providers: []string{"openai"}},
		Pipeline: common.PipelineConfig{ItemDelay: 0},
		Catalog:  common.CatalogConfig{SnapshotTTL: time.Minute},
	}
	rt, err := New(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer rt.Close()

	assert.Empty(t, rt.Extractor.ProviderNames())
	docs, err := rt.Store.ListDocuments(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, docs)
	eq, err := rt.Catalog.Equipment(context.Background())
	require.NoError(t, err)
	assert.Empty(t, eq)
}

func TestNew_BadDriver(t *testing.T) {
	_, err := New(context.Background(), &common.Config{Database: common.DatabaseConfig{Driver: "mysql"}}, discardLogger())
	assert.Error(t, err)
}
