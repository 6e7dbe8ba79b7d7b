package llm

import (
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

const truncationMarker = "\n…(truncated)"

const documentInstruction = `You extract structured data from Brazilian public procurement documents.
Return ONLY a single JSON object, no markdown and no commentary, with this shape:
{
  "identifier": "document number, e.g. 264/2025",
  "managingAuthority": "managing authority name or null",
  "managingAuthoritySigla": "authority abbreviation or null",
  "processNumber": "administrative process number or null",
  "legalBasis": ["cited statutes and decrees"],
  "supplierName": "registered supplier legal name or null",
  "supplierTaxId": "NN.NNN.NNN/NNNN-NN or null",
  "validityMonths": 12,
  "subjectMatter": "short description of the object or null",
  "effectiveDateRange": {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"},
  "lots": [
    {"number": "1", "description": "lot description or null",
     "items": [{"itemNumber": "1", "description": "full item description", "unitOfMeasure": "UN", "quantity": 10, "unitPrice": 201.99}]}
  ],
  "confidence": 0.0
}
Rules: keep items in document order; quantity is an integer; unitPrice is a number with two decimals;
use null for anything not present; confidence is your own estimate between 0 and 1.`

const itemSpecInstruction = `You normalize free-text equipment descriptions from procurement items.
Return ONLY a single JSON object, no markdown and no commentary, with this shape:
{
  "category": "one of: ` + "%CATEGORIES%" + `",
  "technology": "e.g. IP, analog, fiber",
  "format": "e.g. bullet, dome, rack",
  "lensType": "fixed | varifocal | motorized or null",
  "ptz": false,
  "varifocal": false,
  "minResolutionMp": 2.0,
  "poe": true,
  "irRangeMeters": 30,
  "powerDrawWatts": null,
  "portCount": null,
  "transferSpeed": null,
  "storageTb": null,
  "observations": "anything relevant that does not fit the fields",
  "confidence": 0.0
}
Use null for attributes the description does not state. confidence is your own estimate between 0 and 1.`

// BuildDocumentPrompt composes the document extraction prompt. Text longer than maxChars
// is cut and marked so the model knows the tail is missing.
func BuildDocumentPrompt(text string, kind constants.DocumentKind, maxChars int) Prompt {
	var b strings.Builder
	switch kind {
	case constants.KindPriceRegistration:
		b.WriteString("Document kind: price registration record (ATA de Registro de Preços).\n")
	case constants.KindReferenceTerms:
		b.WriteString("Document kind: reference terms (Termo de Referência / edital).\n")
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(truncate(strings.TrimSpace(text), maxChars))
	return Prompt{System: documentInstruction, User: b.String()}
}

// BuildItemSpecPrompt composes the per-item normalization prompt. groupContext is the
// enclosing lot or group name and may be empty.
func BuildItemSpecPrompt(description, groupContext string, maxChars int) Prompt {
	var b strings.Builder
	if g := strings.TrimSpace(groupContext); g != "" {
		b.WriteString("Group: ")
		b.WriteString(g)
		b.WriteString("\n")
	}
	b.WriteString("Item description:\n")
	b.WriteString(truncate(strings.TrimSpace(description), maxChars))
	system := strings.Replace(itemSpecInstruction, "%CATEGORIES%", strings.Join(constants.AsStringSlice(), ", "), 1)
	return Prompt{System: system, User: b.String()}
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + truncationMarker
}
