package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

type documentRow struct {
	entity.Document
	ExtractedJSON sql.NullString `db:"extracted"`
}

const documentColumns = `id, slug, kind, filename, status, identifier, extracted, created_at, updated_at`

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM documents WHERE slug = ?`), slug); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *entity.Document) error {
	if doc.Identifier == "" {
		return fmt.Errorf("document without identifier: %w", common.ErrValidation)
	}
	var extracted sql.NullString
	if doc.Extracted != nil {
		b, err := json.Marshal(doc.Extracted)
		if err != nil {
			return fmt.Errorf("encode extracted document: %w", err)
		}
		extracted = sql.NullString{String: string(b), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		doc.ID, doc.Slug, doc.Kind, doc.Filename, doc.Status, doc.Identifier, extracted,
		doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		s.log.Error("failed to create document", "document_id", doc.ID, "slug", doc.Slug, "error", err)
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, s.q(`SELECT `+documentColumns+` FROM documents WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc := row.Document
	if row.ExtractedJSON.Valid && row.ExtractedJSON.String != "" {
		var ex entity.ExtractedDocument
		if err := json.Unmarshal([]byte(row.ExtractedJSON.String), &ex); err != nil {
			return nil, fmt.Errorf("decode extracted document %s: %w", id, err)
		}
		doc.Extracted = &ex
	}
	return &doc, nil
}

// ListDocuments returns the most recent documents first.
func (s *Store) ListDocuments(ctx context.Context, limit int) ([]entity.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows,
		s.q(`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	out := make([]entity.Document, len(rows))
	for i := range rows {
		out[i] = rows[i].Document
	}
	return out, nil
}

func (s *Store) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE documents SET status = ?, updated_at = ? WHERE id = ?`),
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return expectRow(res, "document", id)
}

func expectRow(res sql.Result, what string, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, common.ErrNotFound)
	}
	return nil
}
