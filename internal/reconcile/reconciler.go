package reconcile

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

const maxIdentifierLen = 120

// Reconciler merges both extractions, back-fills the default supplier and validates the
// result.
type Reconciler struct {
	supplier entity.DefaultSupplier
	log      *slog.Logger
}

func New(supplier entity.DefaultSupplier, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{supplier: supplier, log: logger}
}

// Reconcile returns the validated document. When the identifier is still missing it
// returns a *common.ValidationError whose Partial holds everything that was recovered.
func (r *Reconciler) Reconcile(regex, model *entity.ExtractedDocument, text string) (*entity.ExtractedDocument, Provenance, error) {
	doc, prov := Merge(regex, model)
	r.scrub(doc, prov)

	if (doc.SupplierName == nil || doc.SupplierTaxID == nil) && r.supplier.PresentIn(utils.Fold(text)) {
		if doc.SupplierName == nil {
			name := r.supplier.Name
			doc.SupplierName = &name
			prov["supplierName"] = SourceDefault
		}
		if doc.SupplierTaxID == nil {
			id := r.supplier.TaxID
			doc.SupplierTaxID = &id
			prov["supplierTaxId"] = SourceDefault
		}
		r.log.Info("reconcile.default_supplier_backfill", "identifier", doc.Identifier)
	}

	v := common.NewValidator().
		Field("identifier", strings.TrimSpace(doc.Identifier), common.Required, common.MaxLength(maxIdentifierLen))
	if v.HasErrors() {
		r.log.Warn("reconcile.validation_failed", "error", v.ErrorMessage(), "items", doc.ItemCount())
		return nil, prov, &common.ValidationError{Fields: v.Errors(), Partial: doc}
	}
	doc.Identifier = strings.TrimSpace(doc.Identifier)
	return doc, prov, nil
}

// scrub drops optional values that fail their format rules instead of failing the document.
func (r *Reconciler) scrub(doc *entity.ExtractedDocument, prov Provenance) {
	v := common.NewValidator().
		Field("supplierTaxId", doc.SupplierTaxID, common.TaxID).
		Field("validityMonths", doc.ValidityMonths, common.Positive)
	for _, fe := range v.Errors() {
		r.log.Warn("reconcile.field_dropped", "field", fe.Field, "source", prov[fe.Field], "reason", fe.Message)
		switch fe.Field {
		case "supplierTaxId":
			doc.SupplierTaxID = nil
		case "validityMonths":
			doc.ValidityMonths = nil
		}
		delete(prov, fe.Field)
	}
}
