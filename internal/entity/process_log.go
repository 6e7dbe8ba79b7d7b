package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

// ProcessLogEntry is the append-only audit record of one stage execution.
type ProcessLogEntry struct {
	ID         uuid.UUID           `json:"id"`
	DocumentID uuid.UUID           `json:"document_id"`
	ItemID     *uuid.UUID          `json:"item_id,omitempty"`
	Stage      constants.Stage     `json:"stage"`
	Status     constants.LogStatus `json:"status"`
	Message    string              `json:"message"`
	DurationMs int64               `json:"duration_ms"`
	Details    map[string]any      `json:"details,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}
