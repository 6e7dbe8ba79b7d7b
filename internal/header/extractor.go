package header

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

const (
	maxLegalCitations = 3
	legalPrefixLen    = 20
)

// Config carries deployment-specific knowledge the patterns cannot infer.
type Config struct {
	DefaultSupplier entity.DefaultSupplier
	// AuthorityTaxIDs are tax IDs known to belong to managing authorities, never suppliers.
	AuthorityTaxIDs []string
}

// Extractor pulls header-level fields out of document text with regex cascades.
// It holds no mutable state; Extract is a pure function of its input.
type Extractor struct {
	cfg           Config
	supplierRules cascade
	authorityIDs  map[string]struct{}
}

func NewExtractor(cfg Config) *Extractor {
	rules := cascade{supplierRule}
	if name := strings.TrimSpace(cfg.DefaultSupplier.Name); name != "" {
		literal := strings.Join(strings.Fields(regexp.QuoteMeta(name)), `\s+`)
		rules = append(rules, rule{re: regexp.MustCompile(`(?i)(` + literal + `)`)})
	}
	ids := make(map[string]struct{}, len(cfg.AuthorityTaxIDs))
	for _, id := range cfg.AuthorityTaxIDs {
		ids[strings.TrimSpace(id)] = struct{}{}
	}
	return &Extractor{cfg: cfg, supplierRules: rules, authorityIDs: ids}
}

// Extract returns a partial document. Fields that no pattern matched stay nil and are
// left for reconciliation. Lots are never filled here.
func (e *Extractor) Extract(text string) *entity.ExtractedDocument {
	text = normalizeText(text)
	doc := &entity.ExtractedDocument{}

	if v, _ := identifierRules.first(text); v != "" {
		doc.Identifier = v
	}

	e.extractAuthority(text, doc)

	if v, _ := processRules.first(text); v != "" {
		doc.ProcessNumber = &v
	}

	doc.LegalBasis = extractLegalBasis(text)

	if v, _ := e.supplierRules.first(text); v != "" {
		doc.SupplierName = &v
	}

	doc.SupplierTaxID = e.pickTaxID(reTaxID.FindAllString(text, -1))

	if v, _ := validityRules.first(text); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			doc.ValidityMonths = &n
		}
	}

	if v, _ := subjectRules.first(text); v != "" {
		doc.SubjectMatter = &v
	}

	if m := reDateRange.FindStringSubmatch(text); m != nil {
		start, errS := utils.ParseDate(m[1])
		end, errE := utils.ParseDate(m[2])
		if errS == nil && errE == nil && !end.Before(start) {
			doc.EffectiveDateRange = &entity.DateRange{Start: &start, End: &end}
		}
	}

	return doc
}

func (e *Extractor) extractAuthority(text string, doc *entity.ExtractedDocument) {
	raw, _ := authorityRules.first(text)
	if raw != "" {
		name := raw
		doc.ManagingAuthority = &name
		if a, ok := LookupAuthority(raw); ok {
			canonical, sigla := a.Name, a.Sigla
			doc.ManagingAuthority = &canonical
			doc.ManagingAuthoritySigla = &sigla
			return
		}
		if m := reSiglaHint.FindStringSubmatch(raw); m != nil {
			sigla := m[1]
			doc.ManagingAuthoritySigla = &sigla
		}
		return
	}
	// no labelled authority; fall back to any known authority mentioned in the text
	if a, ok := LookupAuthority(text); ok {
		canonical, sigla := a.Name, a.Sigla
		doc.ManagingAuthority = &canonical
		doc.ManagingAuthoritySigla = &sigla
	}
}

// pickTaxID chooses the supplier among all tax-ID-shaped substrings. The default supplier
// wins outright. Otherwise the second ID is preferred because the first one in these
// documents usually belongs to the managing authority.
func (e *Extractor) pickTaxID(found []string) *string {
	ids := dedupe(found)
	if len(ids) == 0 {
		return nil
	}
	if def := strings.TrimSpace(e.cfg.DefaultSupplier.TaxID); def != "" {
		for _, id := range ids {
			if id == def {
				return &id
			}
		}
	}

	var nonAuthority []string
	for _, id := range ids {
		if _, ok := e.authorityIDs[id]; !ok {
			nonAuthority = append(nonAuthority, id)
		}
	}
	if len(nonAuthority) == 0 {
		return nil
	}
	if len(ids) >= 2 {
		second := ids[1]
		if _, ok := e.authorityIDs[second]; !ok {
			return &second
		}
	}
	first := nonAuthority[0]
	return &first
}

// extractLegalBasis aggregates up to three distinct statute/decree citations. Two
// citations are the same when their first 20 characters match.
func extractLegalBasis(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range reLegal.FindAllString(text, -1) {
		cite := cleanValue(strings.TrimRight(m, "."))
		if cite == "" {
			continue
		}
		key := prefix(utils.Fold(cite), legalPrefixLen)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cite)
		if len(out) == maxLegalCitations {
			break
		}
	}
	return out
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
