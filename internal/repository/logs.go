package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

type logRow struct {
	ID         uuid.UUID           `db:"id"`
	DocumentID uuid.UUID           `db:"document_id"`
	ItemID     *uuid.UUID          `db:"item_id"`
	Stage      constants.Stage     `db:"stage"`
	Status     constants.LogStatus `db:"status"`
	Message    string              `db:"message"`
	DurationMs int64               `db:"duration_ms"`
	Details    sql.NullString      `db:"details"`
	CreatedAt  time.Time           `db:"created_at"`
}

// AppendLog inserts one process log entry. Entries are never updated.
func (s *Store) AppendLog(ctx context.Context, e *entity.ProcessLogEntry) error {
	var details sql.NullString
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode log details: %w", err)
		}
		details = sql.NullString{String: string(b), Valid: true}
	}
	id := e.ID
	if id == uuid.Nil {
		id = uuid.Must(uuid.NewV7())
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO process_logs
		(id, document_id, item_id, stage, status, message, duration_ms, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, e.DocumentID, e.ItemID, e.Stage, e.Status, e.Message, e.DurationMs, details, created.UTC())
	if err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// ListLogs returns a document's log in append order.
func (s *Store) ListLogs(ctx context.Context, documentID uuid.UUID) ([]entity.ProcessLogEntry, error) {
	var rows []logRow
	err := s.db.SelectContext(ctx, &rows, s.q(`SELECT id, document_id, item_id, stage, status, message, duration_ms,
		details, created_at FROM process_logs WHERE document_id = ? ORDER BY created_at, id`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	out := make([]entity.ProcessLogEntry, 0, len(rows))
	for _, r := range rows {
		e := entity.ProcessLogEntry{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			ItemID:     r.ItemID,
			Stage:      r.Stage,
			Status:     r.Status,
			Message:    r.Message,
			DurationMs: r.DurationMs,
			CreatedAt:  r.CreatedAt,
		}
		if r.Details.Valid && r.Details.String != "" {
			if err := json.Unmarshal([]byte(r.Details.String), &e.Details); err != nil {
				s.log.Warn("db.log.details_undecodable", "log_id", r.ID, "error", err)
			}
		}
		out = append(out, e)
	}
	return out, nil
}
