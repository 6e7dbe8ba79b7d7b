package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

// StructuredExtractor runs prompts against an ordered list of providers. The first
// provider that returns a decodable JSON object wins; every failure before that is
// logged and the next provider is tried.
type StructuredExtractor struct {
	providers      []Provider
	log            *slog.Logger
	maxPromptChars int
	docSchema      *jsonschema.Schema
	specSchema     *jsonschema.Schema
}

type Option func(*StructuredExtractor)

func WithLogger(l *slog.Logger) Option {
	return func(s *StructuredExtractor) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxPromptChars bounds the document text sent to a provider.
func WithMaxPromptChars(n int) Option {
	return func(s *StructuredExtractor) {
		if n > 0 {
			s.maxPromptChars = n
		}
	}
}

func NewStructuredExtractor(providers []Provider, opts ...Option) *StructuredExtractor {
	s := &StructuredExtractor{
		providers:      providers,
		log:            slog.Default(),
		maxPromptChars: constants.MaxPromptChars,
		docSchema:      mustCompileSchema("document.json", DocumentSchema()),
		specSchema:     mustCompileSchema("item_spec.json", ItemSpecSchema()),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ProviderNames lists the configured providers in fallback order.
func (s *StructuredExtractor) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// ExtractDocument asks the model for the full document record. Lots and items come
// exclusively from here.
func (s *StructuredExtractor) ExtractDocument(ctx context.Context, text string, kind constants.DocumentKind) (*entity.ExtractedDocument, error) {
	start := time.Now()
	m, provider, err := s.complete(ctx, "document", BuildDocumentPrompt(text, kind, s.maxPromptChars), s.docSchema)
	if err != nil {
		return nil, err
	}
	doc, notes := CoerceDocument(m)
	doc.Kind = kind
	if len(notes) > 0 {
		s.log.Warn("llm.extract.coerced", "op", "document", "provider", provider, "fields", notes)
	}
	s.log.Info("llm.extract.ok",
		"op", "document",
		"provider", provider,
		"identifier", doc.Identifier,
		"lots", len(doc.Lots),
		"items", doc.ItemCount(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// ExtractItemSpec asks the model for the typed attributes of one item description.
func (s *StructuredExtractor) ExtractItemSpec(ctx context.Context, description, groupContext string) (*entity.NormalizedItemSpec, error) {
	start := time.Now()
	m, provider, err := s.complete(ctx, "item_spec", BuildItemSpecPrompt(description, groupContext, s.maxPromptChars), s.specSchema)
	if err != nil {
		return nil, err
	}
	spec, notes := CoerceItemSpec(m)
	if len(notes) > 0 {
		s.log.Warn("llm.extract.coerced", "op", "item_spec", "provider", provider, "fields", notes)
	}
	s.log.Info("llm.extract.ok",
		"op", "item_spec",
		"provider", provider,
		"category", spec.Category,
		"confidence", spec.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return spec, nil
}

func (s *StructuredExtractor) complete(ctx context.Context, op string, p Prompt, schema *jsonschema.Schema) (map[string]any, string, error) {
	if len(s.providers) == 0 {
		return nil, "", &common.ConfigurationError{Message: "no extraction provider configured"}
	}

	var errs []error
	for i, prov := range s.providers {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		start := time.Now()
		s.log.Info("llm.extract.start", "op", op, "provider", prov.Name(), "attempt", i+1, "prompt_chars", len(p.User))

		m, err := s.attempt(ctx, prov, p, schema, op)
		if err != nil {
			perr := &common.ProviderError{Provider: prov.Name(), Cause: err}
			s.log.Warn("llm.extract.provider_failed",
				"op", op,
				"provider", prov.Name(),
				"error", err,
				"remaining", len(s.providers)-i-1,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			errs = append(errs, perr)
			continue
		}
		return m, prov.Name(), nil
	}
	s.log.Error("llm.extract.providers_exhausted", "op", op, "attempts", len(errs))
	return nil, "", &common.ProviderError{Provider: "all", Cause: errors.Join(errs...)}
}

func (s *StructuredExtractor) attempt(ctx context.Context, prov Provider, p Prompt, schema *jsonschema.Schema, op string) (map[string]any, error) {
	content, err := prov.Complete(ctx, p)
	if err != nil {
		return nil, err
	}
	payload := StripFences(content)
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if m == nil {
		return nil, errors.New("malformed response: null")
	}
	if schema != nil {
		if verr := schema.Validate(m); verr != nil {
			// violations are coerced afterwards rather than rejected
			s.log.Warn("llm.extract.schema_violation", "op", op, "provider", prov.Name(), "error", verr)
		}
	}
	return m, nil
}
