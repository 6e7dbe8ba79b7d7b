package entity

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

// ExtractedDocument is the canonical output of document-level extraction.
type ExtractedDocument struct {
	Kind                   constants.DocumentKind `json:"kind,omitempty"`
	Identifier             string                 `json:"identifier"`
	ManagingAuthority      *string                `json:"managingAuthority,omitempty"`
	ManagingAuthoritySigla *string                `json:"managingAuthoritySigla,omitempty"`
	ProcessNumber          *string                `json:"processNumber,omitempty"`
	LegalBasis             []string               `json:"legalBasis,omitempty"`
	SupplierName           *string                `json:"supplierName,omitempty"`
	SupplierTaxID          *string                `json:"supplierTaxId,omitempty"` // NN.NNN.NNN/NNNN-NN
	ValidityMonths         *int                   `json:"validityMonths,omitempty"`
	SubjectMatter          *string                `json:"subjectMatter,omitempty"`
	EffectiveDateRange     *DateRange             `json:"effectiveDateRange,omitempty"`
	Lots                   []Lot                  `json:"lots"`
	Confidence             *float64               `json:"confidence,omitempty"` // model self-report, 0..1
}

// ItemCount counts items across all lots.
func (d *ExtractedDocument) ItemCount() int {
	n := 0
	for _, l := range d.Lots {
		n += len(l.Items)
	}
	return n
}

type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Lot groups items under a procurement lot. Number may carry suffixes ("1-A").
type Lot struct {
	Number      string          `json:"number"`
	Description *string         `json:"description,omitempty"`
	Items       []ExtractedItem `json:"items"`
}

// ExtractedItem is one priced line, in document order.
type ExtractedItem struct {
	ItemNumber    string  `json:"itemNumber"`
	Description   string  `json:"description"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	Quantity      int64   `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"` // two-decimal currency
}

// PriceCents returns the unit price in cents.
func (i ExtractedItem) PriceCents() int64 {
	return int64(math.Round(i.UnitPrice * 100))
}

// TotalCents returns quantity * unit price in cents; ok is false on int64 overflow.
func (i ExtractedItem) TotalCents() (total int64, ok bool) {
	cents := i.PriceCents()
	if i.Quantity == 0 || cents == 0 {
		return 0, true
	}
	if i.Quantity < 0 || cents < 0 || i.Quantity > math.MaxInt64/cents {
		return 0, false
	}
	return i.Quantity * cents, true
}

// Document is the stored record of one extraction attempt.
type Document struct {
	ID         uuid.UUID                `json:"id" db:"id"`
	Slug       string                   `json:"slug" db:"slug"`
	Kind       constants.DocumentKind   `json:"kind" db:"kind"`
	Filename   string                   `json:"filename" db:"filename"`
	Status     constants.DocumentStatus `json:"status" db:"status"`
	Identifier string                   `json:"identifier" db:"identifier"`
	Extracted  *ExtractedDocument       `json:"extracted,omitempty" db:"-"`
	CreatedAt  time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at" db:"updated_at"`
}
