package entity

import "github.com/google/uuid"

// Equipment is one entry of the technical-equipment catalog.
// Seq is the catalog insertion order and breaks ranking ties.
type Equipment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Seq          int64     `json:"seq" db:"seq"`
	Name         string    `json:"name" db:"name"`
	Manufacturer string    `json:"manufacturer" db:"manufacturer"`
	Model        string    `json:"model" db:"model"`
	Category     string    `json:"category" db:"category"`
	Technology   string    `json:"technology" db:"technology"`
	Format       string    `json:"format" db:"format"`
	TechnicalAttributes
}
