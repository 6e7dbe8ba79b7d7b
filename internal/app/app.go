// Package app wires the configured collaborators shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/export"
	"github.com/joseph-ayodele/procurement-tracker/internal/header"
	"github.com/joseph-ayodele/procurement-tracker/internal/llm"
	"github.com/joseph-ayodele/procurement-tracker/internal/llm/openai"
	"github.com/joseph-ayodele/procurement-tracker/internal/llm/openrouter"
	"github.com/joseph-ayodele/procurement-tracker/internal/matching"
	"github.com/joseph-ayodele/procurement-tracker/internal/normalize"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
	"github.com/joseph-ayodele/procurement-tracker/internal/reconcile"
	"github.com/joseph-ayodele/procurement-tracker/internal/repository"
	"github.com/joseph-ayodele/procurement-tracker/internal/textextract"
)

// Runtime bundles the collaborators built from one Config.
type Runtime struct {
	Config       *common.Config
	Logger       *slog.Logger
	DB           *repository.DB
	Store        *repository.Store
	Catalog      *matching.Catalog
	Extractor    *llm.StructuredExtractor
	Orchestrator *pipeline.Orchestrator
	Exporter     *export.Service
}

// configuredProvider is what both chat clients implement.
type configuredProvider interface {
	llm.Provider
	Configured() bool
}

// Providers builds the model providers in configured fallback order, skipping any
// without an API key.
func Providers(cfg common.LLMConfig, logger *slog.Logger) []llm.Provider {
	var out []llm.Provider
	for _, name := range cfg.Providers {
		var p configuredProvider
		switch name {
		case openai.Name:
			p = openai.NewClient(openai.Config{
				APIKey:      cfg.OpenAI.APIKey,
				BaseURL:     cfg.OpenAI.BaseURL,
				Model:       cfg.OpenAI.Model,
				Temperature: cfg.OpenAI.Temperature,
				Timeout:     cfg.OpenAI.Timeout,
			}, logger)
		case openrouter.Name:
			p = openrouter.NewClient(openrouter.Config{
				APIKey:      cfg.OpenRouter.APIKey,
				BaseURL:     cfg.OpenRouter.BaseURL,
				Model:       cfg.OpenRouter.Model,
				Temperature: cfg.OpenRouter.Temperature,
				Timeout:     cfg.OpenRouter.Timeout,
			}, logger)
		default:
			continue
		}
		if !p.Configured() {
			logger.Warn("app.provider.skipped", "provider", name, "reason", "no api key")
			continue
		}
		out = append(out, p)
	}
	return out
}

func HeaderConfig(cfg common.HeaderConfig) header.Config {
	return header.Config{DefaultSupplier: cfg.DefaultSupplier, AuthorityTaxIDs: cfg.AuthorityTaxIDs}
}

// NewExtractor builds the model fallback chain from the llm section.
func NewExtractor(cfg common.LLMConfig, logger *slog.Logger) *llm.StructuredExtractor {
	return llm.NewStructuredExtractor(Providers(cfg, logger),
		llm.WithLogger(logger),
		llm.WithMaxPromptChars(cfg.MaxPromptChars),
	)
}

// OpenDatabase applies migrations, then connects.
func OpenDatabase(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	dbCfg := repository.ConfigFrom(cfg)
	if err := repository.Migrate(dbCfg, logger); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := repository.Open(ctx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// New opens the database and wires the orchestrator and its stages.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	store := repository.NewStore(db, logger)
	catalog := matching.NewCatalog(store, cfg.Catalog.SnapshotTTL)
	extractor := NewExtractor(cfg.LLM, logger)

	orch, err := pipeline.New(pipeline.Dependencies{
		Text:         textextract.NewPDFExtractor(logger),
		Header:       header.NewExtractor(HeaderConfig(cfg.Header)),
		Model:        extractor,
		Reconciler:   reconcile.New(cfg.Header.DefaultSupplier, logger),
		Normalizer:   normalize.NewNormalizer(extractor, logger),
		Matcher:      matching.NewMatcher(catalog, 0, logger),
		Store:        store,
		Limiter:      pipeline.NewFixedDelay(cfg.Pipeline.ItemDelay),
		MinTextChars: cfg.Pipeline.MinTextChars,
		Logger:       logger,
	})
	if err != nil {
		repository.Close(db, logger)
		return nil, err
	}
	logger.Info("app.ready",
		"driver", db.Driver,
		"providers", extractor.ProviderNames(),
		"item_delay", cfg.Pipeline.ItemDelay.String(),
	)
	return &Runtime{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Store:        store,
		Catalog:      catalog,
		Extractor:    extractor,
		Orchestrator: orch,
		Exporter:     export.NewService(store, logger),
	}, nil
}

func (r *Runtime) Close() {
	repository.Close(r.DB, r.Logger)
}
