package llm

import (
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// CoerceDocument maps a decoded model response onto ExtractedDocument. It never fails:
// missing fields stay nil, numeric strings are parsed with locale rules, malformed arrays
// become empty. The returned notes name every field that was dropped or rewritten.
func CoerceDocument(m map[string]any) (*entity.ExtractedDocument, []string) {
	c := &coercer{}
	doc := &entity.ExtractedDocument{
		Identifier:             c.str(m, "identifier"),
		ManagingAuthority:      c.optStr(m, "managingAuthority"),
		ManagingAuthoritySigla: c.optStr(m, "managingAuthoritySigla"),
		ProcessNumber:          c.optStr(m, "processNumber"),
		LegalBasis:             c.strList(m, "legalBasis"),
		SupplierName:           c.optStr(m, "supplierName"),
		SupplierTaxID:          c.optStr(m, "supplierTaxId"),
		SubjectMatter:          c.optStr(m, "subjectMatter"),
		Confidence:             c.confidence(m),
	}
	if n, ok := c.integer(m, "validityMonths"); ok && n > 0 {
		v := int(n)
		doc.ValidityMonths = &v
	}
	doc.EffectiveDateRange = c.dateRange(m)
	doc.Lots = c.lots(m)
	return doc, c.notes
}

// CoerceItemSpec maps a decoded model response onto NormalizedItemSpec. Unknown
// categories collapse to "other"; confidence is clamped to [0,1].
func CoerceItemSpec(m map[string]any) (*entity.NormalizedItemSpec, []string) {
	c := &coercer{}
	spec := &entity.NormalizedItemSpec{
		Technology:   c.str(m, "technology"),
		Format:       c.str(m, "format"),
		Observations: c.str(m, "observations"),
	}
	cat, ok := constants.Canonicalize(c.str(m, "category"))
	if !ok {
		c.note("category(unknown)")
	}
	spec.Category = string(cat)

	spec.LensType = c.optStr(m, "lensType")
	spec.PTZ = c.boolean(m, "ptz")
	spec.Varifocal = c.boolean(m, "varifocal")
	spec.PoE = c.boolean(m, "poe")
	spec.MinResolutionMP = c.optFloat(m, "minResolutionMp")
	spec.IRRangeMeters = c.optFloat(m, "irRangeMeters")
	spec.PowerDrawWatts = c.optFloat(m, "powerDrawWatts")
	spec.StorageTB = c.optFloat(m, "storageTb")
	spec.TransferSpeed = c.optStr(m, "transferSpeed")
	if n, ok := c.integer(m, "portCount"); ok {
		v := int(n)
		spec.PortCount = &v
	}
	if conf := c.confidence(m); conf != nil {
		spec.Confidence = *conf
	}
	return spec, c.notes
}

// ClampUnit clamps f into [0,1]; NaN becomes 0.
func ClampUnit(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

type coercer struct {
	notes []string
}

func (c *coercer) note(s string) { c.notes = append(c.notes, s) }

func (c *coercer) str(m map[string]any, key string) string {
	if p := c.optStr(m, key); p != nil {
		return *p
	}
	return ""
}

func (c *coercer) optStr(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		c.note(key + "(number)")
		return &s
	}
	c.note(key + "(type)")
	return nil
}

func (c *coercer) strList(m map[string]any, key string) []string {
	switch t := m[key].(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			c.note(key + "(string)")
			return []string{s}
		}
		return nil
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	c.note(key + "(type)")
	return nil
}

// number reads a float from a JSON number or a locale-formatted string.
func (c *coercer) number(m map[string]any, key string, parse func(string) (float64, error)) (float64, bool) {
	switch t := m[key].(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		f, err := parse(t)
		if err != nil {
			c.note(key + "(unparseable)")
			return 0, false
		}
		return f, true
	}
	c.note(key + "(type)")
	return 0, false
}

func (c *coercer) optFloat(m map[string]any, key string) *float64 {
	f, ok := c.number(m, key, parseDecimal)
	if !ok {
		return nil
	}
	return &f
}

func (c *coercer) integer(m map[string]any, key string) (int64, bool) {
	if s, ok := m[key].(string); ok {
		n, err := utils.ParseQuantity(s)
		if err != nil {
			c.note(key + "(unparseable)")
			return 0, false
		}
		return n, true
	}
	f, ok := c.number(m, key, parseDecimal)
	if !ok {
		return 0, false
	}
	if f < 0 || f >= math.MaxInt64 {
		c.note(key + "(range)")
		return 0, false
	}
	if f != math.Trunc(f) {
		c.note(key + "(fractional)")
	}
	return int64(math.Round(f)), true
}

func (c *coercer) boolean(m map[string]any, key string) *bool {
	switch t := m[key].(type) {
	case nil:
		return nil
	case bool:
		return &t
	case string:
		switch utils.Fold(strings.TrimSpace(t)) {
		case "TRUE", "YES", "SIM":
			b := true
			return &b
		case "FALSE", "NO", "NAO":
			b := false
			return &b
		}
	}
	c.note(key + "(type)")
	return nil
}

func (c *coercer) confidence(m map[string]any) *float64 {
	f, ok := c.number(m, "confidence", parseDecimal)
	if !ok {
		return nil
	}
	clamped := ClampUnit(f)
	if clamped != f {
		c.note("confidence(clamped)")
	}
	return &clamped
}

func (c *coercer) dateRange(m map[string]any) *entity.DateRange {
	raw, ok := m["effectiveDateRange"].(map[string]any)
	if !ok {
		if m["effectiveDateRange"] != nil {
			c.note("effectiveDateRange(type)")
		}
		return nil
	}
	var dr entity.DateRange
	if s := c.optStr(raw, "start"); s != nil {
		if t, err := utils.ParseDate(*s); err == nil {
			dr.Start = &t
		}
	}
	if s := c.optStr(raw, "end"); s != nil {
		if t, err := utils.ParseDate(*s); err == nil {
			dr.End = &t
		}
	}
	if dr.Start == nil && dr.End == nil {
		return nil
	}
	return &dr
}

func (c *coercer) lots(m map[string]any) []entity.Lot {
	raw, ok := m["lots"].([]any)
	if !ok {
		// some models flatten the structure into a top-level items array
		if items, ok := m["items"].([]any); ok {
			c.note("items(flat)")
			return []entity.Lot{{Number: "1", Items: c.items(items)}}
		}
		if m["lots"] != nil {
			c.note("lots(type)")
		}
		return []entity.Lot{}
	}
	out := make([]entity.Lot, 0, len(raw))
	for i, e := range raw {
		lm, ok := e.(map[string]any)
		if !ok {
			c.note("lots[" + strconv.Itoa(i) + "](type)")
			continue
		}
		lot := entity.Lot{
			Number:      c.str(lm, "number"),
			Description: c.optStr(lm, "description"),
		}
		if lot.Number == "" {
			lot.Number = strconv.Itoa(i + 1)
		}
		items, ok := lm["items"].([]any)
		if !ok && lm["items"] != nil {
			c.note("lots[" + strconv.Itoa(i) + "].items(type)")
		}
		lot.Items = c.items(items)
		out = append(out, lot)
	}
	return out
}

func (c *coercer) items(raw []any) []entity.ExtractedItem {
	out := make([]entity.ExtractedItem, 0, len(raw))
	for i, e := range raw {
		im, ok := e.(map[string]any)
		if !ok {
			c.note("items[" + strconv.Itoa(i) + "](type)")
			continue
		}
		item := entity.ExtractedItem{
			ItemNumber:    c.str(im, "itemNumber"),
			Description:   c.str(im, "description"),
			UnitOfMeasure: c.str(im, "unitOfMeasure"),
		}
		if item.Description == "" {
			c.note("items[" + strconv.Itoa(i) + "](no description)")
			continue
		}
		if item.ItemNumber == "" {
			item.ItemNumber = strconv.Itoa(len(out) + 1)
		}
		if n, ok := c.integer(im, "quantity"); ok {
			item.Quantity = n
		}
		if f, ok := c.number(im, "unitPrice", utils.ParsePrice); ok && f >= 0 {
			item.UnitPrice = utils.RoundCents(f)
		}
		if _, ok := item.TotalCents(); !ok {
			c.note("items[" + strconv.Itoa(i) + "](overflow)")
			item.Quantity, item.UnitPrice = 0, 0
		}
		out = append(out, item)
	}
	return out
}

func parseDecimal(s string) (float64, error) {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f, nil
	}
	return utils.ParsePrice(s)
}
