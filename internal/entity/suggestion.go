package entity

import "github.com/google/uuid"

// MatchSuggestion is one ranked catalog candidate for an item.
// At most one suggestion per item is primary.
type MatchSuggestion struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	ItemID              uuid.UUID `json:"itemId" db:"item_id"`
	EquipmentID         uuid.UUID `json:"equipmentId" db:"equipment_id"`
	IsPrimary           bool      `json:"isPrimary" db:"is_primary"`
	AdherencePercentage float64   `json:"adherencePercentage" db:"adherence"` // 0..1
	Comment             string    `json:"comment" db:"comment"`
	Rank                int       `json:"rank" db:"rank"` // 0 is best
	ConfirmedByUser     bool      `json:"confirmedByUser" db:"confirmed_by_user"`
}
