package entity

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

// ItemRecord is a stored line item, the unit of work for the item backlog.
type ItemRecord struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	DocumentID    uuid.UUID            `json:"document_id" db:"document_id"`
	Position      int                  `json:"position" db:"position"`
	LotNumber     string               `json:"lot_number" db:"lot_number"`
	GroupContext  *string              `json:"group_context,omitempty" db:"group_context"`
	ItemNumber    string               `json:"item_number" db:"item_number"`
	Description   string               `json:"description" db:"description"`
	UnitOfMeasure string               `json:"unit_of_measure" db:"unit_of_measure"`
	Quantity      int64                `json:"quantity" db:"quantity"`
	UnitPrice     float64              `json:"unit_price" db:"unit_price"`
	Status        constants.ItemStatus `json:"status" db:"status"`
	ErrorMessage  *string              `json:"error_message,omitempty" db:"error_message"`
}
