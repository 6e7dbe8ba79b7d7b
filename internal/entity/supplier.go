package entity

import (
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/internal/utils"
)

// DefaultSupplier is the supplier the deployment extracts records for. Its name and
// tax ID back-fill documents whose supplier block could not be read.
type DefaultSupplier struct {
	Name    string   `mapstructure:"name"`
	TaxID   string   `mapstructure:"tax_id"`
	Markers []string `mapstructure:"markers"` // extra fragments that identify it
}

func (s DefaultSupplier) Configured() bool {
	return strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.TaxID) != ""
}

// PresentIn reports whether foldedText (upper-case, accents stripped) mentions the supplier.
func (s DefaultSupplier) PresentIn(foldedText string) bool {
	if !s.Configured() {
		return false
	}
	if strings.Contains(foldedText, s.TaxID) {
		return true
	}
	candidates := append([]string{s.Name}, s.Markers...)
	for _, m := range candidates {
		m = utils.Fold(strings.TrimSpace(m))
		if m != "" && strings.Contains(foldedText, m) {
			return true
		}
	}
	return false
}
