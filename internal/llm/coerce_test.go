package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceDocument_MalformedNestedArrays(t *testing.T) {
	doc, notes := CoerceDocument(map[string]any{
		"identifier": "1/2025",
		"lots":       "not an array",
		"legalBasis": 42.0,
	})
	assert.NotNil(t, doc.Lots)
	assert.Empty(t, doc.Lots)
	assert.Nil(t, doc.LegalBasis)
	assert.Contains(t, notes, "lots(type)")
	assert.Contains(t, notes, "legalBasis(type)")
}

func TestCoerceDocument_FlatItems(t *testing.T) {
	doc, _ := CoerceDocument(map[string]any{
		"identifier": "1/2025",
		"items": []any{
			map[string]any{"description": "Switch 24 portas PoE", "quantity": 3.0, "unitPrice": 1500.556},
		},
	})
	require.Len(t, doc.Lots, 1)
	require.Len(t, doc.Lots[0].Items, 1)
	assert.Equal(t, int64(3), doc.Lots[0].Items[0].Quantity)
	assert.Equal(t, 1500.56, doc.Lots[0].Items[0].UnitPrice)
}

func TestCoerceDocument_FractionalQuantityNoted(t *testing.T) {
	doc, notes := CoerceDocument(map[string]any{
		"identifier": "1/2025",
		"items": []any{
			map[string]any{"description": "Cabo UTP cat6", "quantity": 66.147, "unitPrice": 2.5},
			map[string]any{"description": "Conector RJ45", "quantity": 200.0, "unitPrice": 0.8},
		},
	})
	require.Len(t, doc.Lots, 1)
	require.Len(t, doc.Lots[0].Items, 2)
	assert.Equal(t, int64(66), doc.Lots[0].Items[0].Quantity)
	assert.Equal(t, int64(200), doc.Lots[0].Items[1].Quantity)
	assert.Contains(t, notes, "quantity(fractional)")
	assert.Len(t, filterNotes(notes, "quantity("), 1)
}

func TestCoerceDocument_MissingFieldsStayNil(t *testing.T) {
	doc, _ := CoerceDocument(map[string]any{})
	assert.Empty(t, doc.Identifier)
	assert.Nil(t, doc.ManagingAuthority)
	assert.Nil(t, doc.ValidityMonths)
	assert.Nil(t, doc.Confidence)
	assert.Nil(t, doc.EffectiveDateRange)
	assert.Empty(t, doc.Lots)
}

func TestCoerceDocument_UnparseableNumbers(t *testing.T) {
	doc, notes := CoerceDocument(map[string]any{
		"identifier": "1/2025",
		"lots": []any{map[string]any{"number": "2-A", "items": []any{
			map[string]any{"description": "HD 4TB", "quantity": "muitos", "unitPrice": "a combinar"},
		}}},
		"validityMonths":     -3.0,
		"effectiveDateRange": map[string]any{"start": "01/03/2025", "end": "2026-02-28"},
	})
	require.Len(t, doc.Lots, 1)
	assert.Equal(t, "2-A", doc.Lots[0].Number)
	assert.Zero(t, doc.Lots[0].Items[0].Quantity)
	assert.Zero(t, doc.Lots[0].Items[0].UnitPrice)
	assert.Nil(t, doc.ValidityMonths)
	require.NotNil(t, doc.EffectiveDateRange)
	assert.Equal(t, "2025-03-01", doc.EffectiveDateRange.Start.Format("2006-01-02"))
	assert.Equal(t, "2026-02-28", doc.EffectiveDateRange.End.Format("2006-01-02"))
	assert.Contains(t, notes, "quantity(unparseable)")
	assert.Contains(t, notes, "unitPrice(unparseable)")
}

func TestCoerceItemSpec_UnknownCategoryAndClamp(t *testing.T) {
	spec, notes := CoerceItemSpec(map[string]any{"category": "furniture", "confidence": -0.2})
	assert.Equal(t, "other", spec.Category)
	assert.Equal(t, 0.0, spec.Confidence)
	assert.Contains(t, notes, "category(unknown)")
	assert.Contains(t, notes, "confidence(clamped)")
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 1.0, ClampUnit(1.5))
	assert.Equal(t, 0.0, ClampUnit(-1))
	assert.Equal(t, 0.42, ClampUnit(0.42))
}

func filterNotes(notes []string, prefix string) []string {
	var out []string
	for _, n := range notes {
		if strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	return out
}
