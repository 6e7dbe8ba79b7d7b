package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

// DocumentStore persists documents once they carry a valid identifier.
type DocumentStore interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateDocument(ctx context.Context, doc *entity.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error
}

// ItemStore persists line items and their normalization and matching results.
type ItemStore interface {
	CreateItems(ctx context.Context, items []entity.ItemRecord) error
	ListItems(ctx context.Context, documentID uuid.UUID) ([]entity.ItemRecord, error)
	UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status constants.ItemStatus, errMsg *string) error
	UpsertSpec(ctx context.Context, spec *entity.NormalizedItemSpec) error
	// ReplaceSuggestions demotes every existing primary for the item, then stores the new
	// ranking. Not atomic against concurrent writers on the same item.
	ReplaceSuggestions(ctx context.Context, itemID uuid.UUID, suggestions []entity.MatchSuggestion) error
	// ConfirmSuggestion marks the (item, equipment) suggestion confirmed and primary,
	// demoting any other primary first.
	ConfirmSuggestion(ctx context.Context, itemID, equipmentID uuid.UUID) error
}

// LogStore is the append-only process log.
type LogStore interface {
	AppendLog(ctx context.Context, entry *entity.ProcessLogEntry) error
}

// Store is the persistence collaborator the orchestrator hands records to.
type Store interface {
	DocumentStore
	ItemStore
	LogStore
}
