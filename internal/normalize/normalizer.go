package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/llm"
)

// SpecExtractor is the model call behind normalization; llm.StructuredExtractor implements it.
type SpecExtractor interface {
	ExtractItemSpec(ctx context.Context, description, groupContext string) (*entity.NormalizedItemSpec, error)
}

// Normalizer turns one free-text item description into a NormalizedItemSpec.
type Normalizer struct {
	extractor SpecExtractor
	log       *slog.Logger
}

func NewNormalizer(extractor SpecExtractor, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{extractor: extractor, log: logger}
}

// Normalize makes one model call. Optional attributes the model omits stay nil;
// confidence is the model's own value clamped to [0,1].
func (n *Normalizer) Normalize(ctx context.Context, description, groupContext string) (*entity.NormalizedItemSpec, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: item description is empty", common.ErrInvalidInput)
	}
	start := time.Now()
	spec, err := n.extractor.ExtractItemSpec(ctx, description, strings.TrimSpace(groupContext))
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	tidy(spec)
	n.log.Debug("normalize.ok",
		"category", spec.Category,
		"technology", spec.Technology,
		"confidence", spec.Confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return spec, nil
}

func tidy(spec *entity.NormalizedItemSpec) {
	cat, _ := constants.Canonicalize(spec.Category)
	spec.Category = string(cat)
	spec.Technology = strings.TrimSpace(spec.Technology)
	spec.Format = strings.ToLower(strings.TrimSpace(spec.Format))
	spec.Observations = strings.TrimSpace(spec.Observations)
	spec.Confidence = llm.ClampUnit(spec.Confidence)

	for _, f := range []**float64{&spec.MinResolutionMP, &spec.IRRangeMeters, &spec.PowerDrawWatts, &spec.StorageTB} {
		if *f != nil && **f < 0 {
			*f = nil
		}
	}
	if spec.PortCount != nil && *spec.PortCount < 0 {
		spec.PortCount = nil
	}
	if spec.LensType != nil {
		lens := strings.ToLower(strings.TrimSpace(*spec.LensType))
		spec.LensType = &lens
		if spec.Varifocal == nil && strings.Contains(lens, "varifocal") {
			v := true
			spec.Varifocal = &v
		}
	}
}
