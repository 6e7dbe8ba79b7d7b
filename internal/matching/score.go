package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// categoryWeight is the adherence granted by a category match alone; the remainder is
// spread over the optional criteria the spec declares.
const categoryWeight = 0.5

// criterion compares one declared spec attribute against a catalog entry.
// considered is false when the spec does not declare the attribute.
type criterion struct {
	name       string
	considered bool
	matched    bool
}

// score returns adherence in [0,1] and a human-readable comment. ok is false when the
// equipment is not compatible at all (different category, technology or format).
func score(spec *entity.NormalizedItemSpec, eq entity.Equipment, foldedDescription string) (adherence float64, comment string, ok bool) {
	specCat, _ := constants.Canonicalize(spec.Category)
	eqCat, _ := constants.Canonicalize(eq.Category)
	if specCat != eqCat {
		return 0, "", false
	}
	if !compatible(spec.Technology, eq.Technology) || !compatible(spec.Format, eq.Format) {
		return 0, "", false
	}

	s, e := spec.TechnicalAttributes, eq.TechnicalAttributes
	crits := []criterion{
		textCrit("technology", spec.Technology, eq.Technology),
		textCrit("format", spec.Format, eq.Format),
		textPtrCrit("lensType", s.LensType, e.LensType),
		boolCrit("ptz", s.PTZ, e.PTZ),
		boolCrit("varifocal", s.Varifocal, e.Varifocal),
		boolCrit("poe", s.PoE, e.PoE),
		atLeastCrit("minResolutionMp", s.MinResolutionMP, e.MinResolutionMP),
		atLeastCrit("irRangeMeters", s.IRRangeMeters, e.IRRangeMeters),
		atLeastCrit("powerDrawWatts", s.PowerDrawWatts, e.PowerDrawWatts),
		atLeastCrit("portCount", intToFloat(s.PortCount), intToFloat(e.PortCount)),
		textPtrCrit("transferSpeed", s.TransferSpeed, e.TransferSpeed),
		atLeastCrit("storageTb", s.StorageTB, e.StorageTB),
	}
	if model := utils.Fold(strings.TrimSpace(eq.Model)); len(model) >= 3 && strings.Contains(foldedDescription, model) {
		crits = append(crits, criterion{name: "model", considered: true, matched: true})
	}

	var considered, matchedN int
	var matched, missed []string
	for _, c := range crits {
		if !c.considered {
			continue
		}
		considered++
		if c.matched {
			matchedN++
			matched = append(matched, c.name)
		} else {
			missed = append(missed, c.name)
		}
	}

	adherence = categoryWeight
	if considered > 0 {
		adherence += (1 - categoryWeight) * float64(matchedN) / float64(considered)
	}
	adherence = math.Round(math.Min(math.Max(adherence, 0), 1)*10000) / 10000

	comment = fmt.Sprintf("category %s", specCat)
	if len(matched) > 0 {
		comment += "; matched: " + strings.Join(matched, ", ")
	}
	if len(missed) > 0 {
		comment += "; not met: " + strings.Join(missed, ", ")
	}
	return adherence, comment, true
}

// compatible treats an undeclared value on either side as a wildcard.
func compatible(a, b string) bool {
	a, b = utils.Fold(strings.TrimSpace(a)), utils.Fold(strings.TrimSpace(b))
	return a == "" || b == "" || a == b
}

func textCrit(name, want, have string) criterion {
	want = strings.TrimSpace(want)
	if want == "" {
		return criterion{name: name}
	}
	return criterion{name: name, considered: true, matched: utils.Fold(want) == utils.Fold(strings.TrimSpace(have))}
}

func textPtrCrit(name string, want, have *string) criterion {
	if want == nil {
		return criterion{name: name}
	}
	return textCrit(name, *want, utils.StrOrEmpty(have))
}

func boolCrit(name string, want, have *bool) criterion {
	if want == nil {
		return criterion{name: name}
	}
	return criterion{name: name, considered: true, matched: have != nil && *have == *want}
}

// atLeastCrit is met when the catalog value reaches the requested minimum.
func atLeastCrit(name string, want, have *float64) criterion {
	if want == nil {
		return criterion{name: name}
	}
	return criterion{name: name, considered: true, matched: have != nil && *have >= *want}
}

func intToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}
