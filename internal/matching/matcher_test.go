package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

type stubSource struct {
	items []entity.Equipment
	calls int
}

func (s *stubSource) ListEquipment(context.Context) ([]entity.Equipment, error) {
	s.calls++
	return s.items, nil
}

func camera(seq int64, model, format string, mp float64, ir float64, poe bool) entity.Equipment {
	return entity.Equipment{
		ID: uuid.New(), Seq: seq, Name: "Câmera " + model, Manufacturer: "Acme", Model: model,
		Category: "camera", Technology: "IP", Format: format,
		TechnicalAttributes: entity.TechnicalAttributes{
			MinResolutionMP: utils.Ptr(mp), IRRangeMeters: utils.Ptr(ir), PoE: utils.Ptr(poe),
		},
	}
}

func cameraSpec() *entity.NormalizedItemSpec {
	return &entity.NormalizedItemSpec{
		Category: "camera", Technology: "IP", Format: "bullet",
		TechnicalAttributes: entity.TechnicalAttributes{
			MinResolutionMP: utils.Ptr(4.0), IRRangeMeters: utils.Ptr(30.0), PoE: utils.Ptr(true),
		},
	}
}

func TestRank_OrderingAndPrimary(t *testing.T) {
	catalog := []entity.Equipment{
		camera(1, "B2", "bullet", 2, 30, true),       // misses resolution
		camera(2, "B4", "bullet", 4, 50, true),       // meets everything
		camera(3, "D4", "dome", 4, 30, true),         // incompatible format
		camera(4, "B4X", "bullet", 8, 60, true),      // meets everything, later seq
		{ID: uuid.New(), Seq: 5, Category: "switch"}, // wrong category
	}
	itemID := uuid.New()

	out := Rank(itemID, cameraSpec(), "Câmera bullet 4MP", catalog, 0)
	require.Len(t, out, 3)

	assert.Equal(t, catalog[1].ID, out[0].EquipmentID)
	assert.Equal(t, catalog[3].ID, out[1].EquipmentID)
	assert.Equal(t, catalog[0].ID, out[2].EquipmentID)

	primaries := 0
	for i, s := range out {
		assert.Equal(t, i, s.Rank)
		assert.Equal(t, itemID, s.ItemID)
		assert.GreaterOrEqual(t, s.AdherencePercentage, 0.0)
		assert.LessOrEqual(t, s.AdherencePercentage, 1.0)
		assert.False(t, s.ConfirmedByUser)
		if s.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
	assert.True(t, out[0].IsPrimary)
	assert.Equal(t, 1.0, out[0].AdherencePercentage)
	assert.Less(t, out[2].AdherencePercentage, out[1].AdherencePercentage)
	assert.Contains(t, out[2].Comment, "not met: minResolutionMp")
}

func TestRank_ModelMentionBreaksTie(t *testing.T) {
	catalog := []entity.Equipment{
		camera(1, "XB-2000", "bullet", 4, 30, true),
		camera(2, "ZB-9000", "bullet", 4, 30, true),
	}
	spec := cameraSpec()
	spec.PoE = utils.Ptr(false) // neither meets it, so neither reaches 1.0 without the mention
	out := Rank(uuid.New(), spec, "câmera ref. zb-9000 ou similar", catalog, 0)
	require.Len(t, out, 2)
	assert.Equal(t, catalog[1].ID, out[0].EquipmentID)
}

func TestRank_EmptyIsValid(t *testing.T) {
	out := Rank(uuid.New(), cameraSpec(), "", []entity.Equipment{{ID: uuid.New(), Category: "storage"}}, 0)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestRank_CategoryOnlySpec(t *testing.T) {
	out := Rank(uuid.New(), &entity.NormalizedItemSpec{Category: "storage"}, "",
		[]entity.Equipment{{ID: uuid.New(), Seq: 1, Category: "storage"}}, 0)
	require.Len(t, out, 1)
	assert.Equal(t, 0.5, out[0].AdherencePercentage)
	assert.True(t, out[0].IsPrimary)
}

func TestRank_Limit(t *testing.T) {
	var catalog []entity.Equipment
	for i := 0; i < 10; i++ {
		catalog = append(catalog, camera(int64(i), "M", "bullet", 4, 30, true))
	}
	out := Rank(uuid.New(), cameraSpec(), "", catalog, 3)
	require.Len(t, out, 3)
	assert.Equal(t, catalog[0].ID, out[0].EquipmentID)
}

func TestMatcher_UsesCatalogSnapshot(t *testing.T) {
	src := &stubSource{items: []entity.Equipment{camera(1, "B4", "bullet", 4, 30, true)}}
	catalog := NewCatalog(src, time.Hour)
	m := NewMatcher(catalog, 0, nil)

	for i := 0; i < 3; i++ {
		out, err := m.Match(context.Background(), uuid.New(), cameraSpec(), "")
		require.NoError(t, err)
		require.Len(t, out, 1)
	}
	assert.Equal(t, 1, src.calls)
	assert.False(t, catalog.FetchedAt().IsZero())

	catalog.Invalidate()
	_, err := m.Match(context.Background(), uuid.New(), cameraSpec(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
