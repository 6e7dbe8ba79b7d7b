package constants

import "strings"

// DocumentKind distinguishes the two procurement document families we ingest.
type DocumentKind string

const (
	KindPriceRegistration DocumentKind = "priceRegistration" // ata de registro de preços
	KindReferenceTerms    DocumentKind = "referenceTerms"    // termo de referência / edital
)

var DocumentKinds = []string{string(KindPriceRegistration), string(KindReferenceTerms)}

// ParseDocumentKind defaults to a price registration record.
func ParseDocumentKind(s string) DocumentKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "referenceterms", "reference_terms", "tr", "termo":
		return KindReferenceTerms
	default:
		return KindPriceRegistration
	}
}

// AllowedExtensions holds the file extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

const (
	// MinTextChars is the shortest extracted text we accept as a text PDF.
	MinTextChars = 100
	// MaxSlugLen caps derived identifier slugs.
	MaxSlugLen = 100
	// MaxPromptChars bounds document text sent to a model.
	MaxPromptChars = 30000
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
