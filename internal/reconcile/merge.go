package reconcile

import (
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

type Source string

const (
	SourceRegex   Source = "regex"
	SourceModel   Source = "model"
	SourceDefault Source = "defaultSupplier"
)

// FieldCandidate is one strategy's value for one field. Regex candidates are present or
// not; model candidates also carry the model's own confidence.
type FieldCandidate[T any] struct {
	Value      T
	Source     Source
	Present    bool
	Confidence *float64
}

// Provenance records which source supplied each merged field.
type Provenance map[string]Source

// resolve returns the first present candidate, in the order given.
func resolve[T any](prov Provenance, field string, cands ...FieldCandidate[T]) T {
	for _, c := range cands {
		if c.Present {
			prov[field] = c.Source
			return c.Value
		}
	}
	var zero T
	return zero
}

func ptrCandidates[T any](regex, model *T, conf *float64) (FieldCandidate[*T], FieldCandidate[*T]) {
	return FieldCandidate[*T]{Value: regex, Source: SourceRegex, Present: regex != nil},
		FieldCandidate[*T]{Value: model, Source: SourceModel, Present: model != nil, Confidence: conf}
}

// Merge combines the regex and model extractions of one document. Header scalars take
// the regex value whenever it is present and fall back to the model. Lots and items
// always come from the model. Subject matter and the effective date range are header
// fields too.
func Merge(regex, model *entity.ExtractedDocument) (*entity.ExtractedDocument, Provenance) {
	if regex == nil {
		regex = &entity.ExtractedDocument{}
	}
	if model == nil {
		model = &entity.ExtractedDocument{}
	}
	prov := Provenance{}
	conf := model.Confidence
	out := &entity.ExtractedDocument{Kind: regex.Kind, Confidence: conf}
	if out.Kind == "" {
		out.Kind = model.Kind
	}

	out.Identifier = resolve(prov, "identifier",
		FieldCandidate[string]{Value: regex.Identifier, Source: SourceRegex, Present: regex.Identifier != ""},
		FieldCandidate[string]{Value: model.Identifier, Source: SourceModel, Present: model.Identifier != "", Confidence: conf},
	)

	r, m := ptrCandidates(regex.ManagingAuthority, model.ManagingAuthority, conf)
	out.ManagingAuthority = resolve(prov, "managingAuthority", r, m)
	r, m = ptrCandidates(regex.ManagingAuthoritySigla, model.ManagingAuthoritySigla, conf)
	out.ManagingAuthoritySigla = resolve(prov, "managingAuthoritySigla", r, m)
	r, m = ptrCandidates(regex.ProcessNumber, model.ProcessNumber, conf)
	out.ProcessNumber = resolve(prov, "processNumber", r, m)
	r, m = ptrCandidates(regex.SupplierName, model.SupplierName, conf)
	out.SupplierName = resolve(prov, "supplierName", r, m)
	r, m = ptrCandidates(regex.SupplierTaxID, model.SupplierTaxID, conf)
	out.SupplierTaxID = resolve(prov, "supplierTaxId", r, m)

	ri, mi := ptrCandidates(regex.ValidityMonths, model.ValidityMonths, conf)
	out.ValidityMonths = resolve(prov, "validityMonths", ri, mi)

	out.LegalBasis = resolve(prov, "legalBasis",
		FieldCandidate[[]string]{Value: regex.LegalBasis, Source: SourceRegex, Present: len(regex.LegalBasis) > 0},
		FieldCandidate[[]string]{Value: model.LegalBasis, Source: SourceModel, Present: len(model.LegalBasis) > 0, Confidence: conf},
	)

	r, m = ptrCandidates(regex.SubjectMatter, model.SubjectMatter, conf)
	out.SubjectMatter = resolve(prov, "subjectMatter", r, m)
	rd, md := ptrCandidates(regex.EffectiveDateRange, model.EffectiveDateRange, conf)
	out.EffectiveDateRange = resolve(prov, "effectiveDateRange", rd, md)

	out.Lots = model.Lots
	if out.Lots == nil {
		out.Lots = []entity.Lot{}
	}
	prov["lots"] = SourceModel

	return out, prov
}
