package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

// runLog collects process log entries for one run. Entries are buffered until the parent
// document exists in the store, then written through.
type runLog struct {
	store    LogStore
	docID    uuid.UUID
	now      func() time.Time
	log      *slog.Logger
	attached bool
	entries  []entity.ProcessLogEntry
}

func newRunLog(store LogStore, docID uuid.UUID, now func() time.Time, logger *slog.Logger) *runLog {
	return &runLog{store: store, docID: docID, now: now, log: logger}
}

func (r *runLog) add(ctx context.Context, itemID *uuid.UUID, stage constants.Stage, status constants.LogStatus, msg string, took time.Duration, details map[string]any) {
	e := entity.ProcessLogEntry{
		ID:         uuid.Must(uuid.NewV7()),
		DocumentID: r.docID,
		ItemID:     itemID,
		Stage:      stage,
		Status:     status,
		Message:    msg,
		DurationMs: took.Milliseconds(),
		Details:    details,
		CreatedAt:  r.now().UTC(),
	}
	r.entries = append(r.entries, e)
	if r.attached {
		r.write(ctx, &e)
	}
}

// attach flushes buffered entries and switches to write-through.
func (r *runLog) attach(ctx context.Context) {
	r.attached = true
	for i := range r.entries {
		r.write(ctx, &r.entries[i])
	}
}

func (r *runLog) write(ctx context.Context, e *entity.ProcessLogEntry) {
	if err := r.store.AppendLog(ctx, e); err != nil {
		r.log.Warn("pipeline.log.append_failed", "document_id", r.docID, "stage", e.Stage, "error", err)
	}
}
