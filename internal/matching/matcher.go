package matching

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/internal/cache"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

const defaultMaxSuggestions = 5

// EquipmentSource lists the full catalog ordered by Seq.
type EquipmentSource interface {
	ListEquipment(ctx context.Context) ([]entity.Equipment, error)
}

// Catalog is a time-boxed snapshot of the equipment catalog.
type Catalog struct {
	snapshot *cache.Value[[]entity.Equipment]
}

func NewCatalog(src EquipmentSource, ttl time.Duration) *Catalog {
	return &Catalog{snapshot: cache.New[[]entity.Equipment](ttl, src.ListEquipment)}
}

func (c *Catalog) Equipment(ctx context.Context) ([]entity.Equipment, error) {
	return c.snapshot.Get(ctx)
}

// Invalidate drops the snapshot; the next match reloads the catalog.
func (c *Catalog) Invalidate() { c.snapshot.Invalidate() }

func (c *Catalog) FetchedAt() time.Time { return c.snapshot.FetchedAt() }

// Matcher ranks catalog equipment against normalized item specs.
type Matcher struct {
	catalog        *Catalog
	maxSuggestions int
	log            *slog.Logger
}

func NewMatcher(catalog *Catalog, maxSuggestions int, logger *slog.Logger) *Matcher {
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{catalog: catalog, maxSuggestions: maxSuggestions, log: logger}
}

// Match returns suggestions for one item, best first. An empty result is not an error.
func (m *Matcher) Match(ctx context.Context, itemID uuid.UUID, spec *entity.NormalizedItemSpec, rawDescription string) ([]entity.MatchSuggestion, error) {
	equipment, err := m.catalog.Equipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	out := Rank(itemID, spec, rawDescription, equipment, m.maxSuggestions)
	m.log.Debug("matching.ranked", "item_id", itemID, "catalog", len(equipment), "suggestions", len(out))
	return out, nil
}

// Rank scores every compatible entry, orders by adherence descending then Seq ascending,
// keeps the best limit entries (limit <= 0 keeps all) and flags rank 0 as primary.
func Rank(itemID uuid.UUID, spec *entity.NormalizedItemSpec, rawDescription string, equipment []entity.Equipment, limit int) []entity.MatchSuggestion {
	if spec == nil {
		return []entity.MatchSuggestion{}
	}
	type scored struct {
		eq        entity.Equipment
		adherence float64
		comment   string
	}
	folded := utils.Fold(rawDescription)
	candidates := make([]scored, 0, len(equipment))
	for _, eq := range equipment {
		if a, c, ok := score(spec, eq, folded); ok {
			candidates = append(candidates, scored{eq: eq, adherence: a, comment: c})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].adherence != candidates[j].adherence {
			return candidates[i].adherence > candidates[j].adherence
		}
		return candidates[i].eq.Seq < candidates[j].eq.Seq
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]entity.MatchSuggestion, 0, len(candidates))
	for i, c := range candidates {
		out = append(out, entity.MatchSuggestion{
			ID:                  uuid.New(),
			ItemID:              itemID,
			EquipmentID:         c.eq.ID,
			IsPrimary:           i == 0,
			AdherencePercentage: c.adherence,
			Comment:             c.comment,
			Rank:                i,
		})
	}
	return out
}
