package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/reconcile"
	"github.com/joseph-ayodele/procurement-tracker/internal/textextract"
)

// HeaderExtractor is the regex pass over document text.
type HeaderExtractor interface {
	Extract(text string) *entity.ExtractedDocument
}

// DocumentExtractor is the model pass over document text.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, text string, kind constants.DocumentKind) (*entity.ExtractedDocument, error)
}

// ItemNormalizer turns an item description into a typed spec.
type ItemNormalizer interface {
	Normalize(ctx context.Context, description, groupContext string) (*entity.NormalizedItemSpec, error)
}

// ItemMatcher ranks catalog equipment for a normalized item.
type ItemMatcher interface {
	Match(ctx context.Context, itemID uuid.UUID, spec *entity.NormalizedItemSpec, rawDescription string) ([]entity.MatchSuggestion, error)
}

// Dependencies wires the orchestrator. Limiter defaults to NoDelay, MinTextChars to
// constants.MinTextChars and Now to time.Now.
type Dependencies struct {
	Text       textextract.TextExtractor
	Header     HeaderExtractor
	Model      DocumentExtractor
	Reconciler *reconcile.Reconciler
	Normalizer ItemNormalizer
	Matcher    ItemMatcher
	Store      Store
	Limiter    Limiter

	MinTextChars int
	Now          func() time.Time
	Logger       *slog.Logger
}

// Orchestrator sequences document extraction and the per-item backlog. One run
// processes one document; items are handled one at a time in document order.
type Orchestrator struct {
	text       textextract.TextExtractor
	header     HeaderExtractor
	model      DocumentExtractor
	reconciler *reconcile.Reconciler
	normalizer ItemNormalizer
	matcher    ItemMatcher
	store      Store
	limiter    Limiter

	minTextChars int
	now          func() time.Time
	log          *slog.Logger
}

func New(d Dependencies) (*Orchestrator, error) {
	switch {
	case d.Text == nil, d.Header == nil, d.Model == nil, d.Reconciler == nil:
		return nil, fmt.Errorf("pipeline: document stages are required")
	case d.Normalizer == nil, d.Matcher == nil:
		return nil, fmt.Errorf("pipeline: item stages are required")
	case d.Store == nil:
		return nil, fmt.Errorf("pipeline: store is required")
	}
	o := &Orchestrator{
		text:         d.Text,
		header:       d.Header,
		model:        d.Model,
		reconciler:   d.Reconciler,
		normalizer:   d.Normalizer,
		matcher:      d.Matcher,
		store:        d.Store,
		limiter:      d.Limiter,
		minTextChars: d.MinTextChars,
		now:          d.Now,
		log:          d.Logger,
	}
	if o.limiter == nil {
		o.limiter = NoDelay{}
	}
	if o.minTextChars <= 0 {
		o.minTextChars = constants.MinTextChars
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o, nil
}

// ConfirmSuggestion records the user's choice for an item and makes it the primary.
func (o *Orchestrator) ConfirmSuggestion(ctx context.Context, itemID, equipmentID uuid.UUID) error {
	if err := o.store.ConfirmSuggestion(ctx, itemID, equipmentID); err != nil {
		return fmt.Errorf("confirm suggestion: %w", err)
	}
	o.log.Info("pipeline.suggestion.confirmed", "item_id", itemID, "equipment_id", equipmentID)
	return nil
}
