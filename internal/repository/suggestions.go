package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

const suggestionColumns = `id, item_id, equipment_id, is_primary, adherence, comment, rank, confirmed_by_user`

// ReplaceSuggestions demotes every primary of the item, drops unconfirmed suggestions and
// stores the new ranking. A confirmed suggestion that is ranked again keeps its flag.
func (s *Store) ReplaceSuggestions(ctx context.Context, itemID uuid.UUID, suggestions []entity.MatchSuggestion) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE match_suggestions SET is_primary = ? WHERE item_id = ?`), false, itemID); err != nil {
			return fmt.Errorf("demote suggestions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM match_suggestions WHERE item_id = ? AND confirmed_by_user = ?`), itemID, false); err != nil {
			return fmt.Errorf("clear suggestions: %w", err)
		}
		for i := range suggestions {
			sg := suggestions[i]
			if sg.ID == uuid.Nil {
				sg.ID = uuid.New()
			}
			sg.ItemID = itemID
			_, err := tx.NamedExecContext(ctx, `INSERT INTO match_suggestions (`+suggestionColumns+`)
				VALUES (:id, :item_id, :equipment_id, :is_primary, :adherence, :comment, :rank, :confirmed_by_user)
				ON CONFLICT (item_id, equipment_id) DO UPDATE SET
					is_primary = excluded.is_primary,
					adherence = excluded.adherence,
					comment = excluded.comment,
					rank = excluded.rank`, &sg)
			if err != nil {
				return fmt.Errorf("insert suggestion %d: %w", i, err)
			}
		}
		return nil
	})
}

// ConfirmSuggestion demotes every primary of the item, then marks the chosen one
// confirmed and primary.
func (s *Store) ConfirmSuggestion(ctx context.Context, itemID, equipmentID uuid.UUID) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE match_suggestions SET is_primary = ? WHERE item_id = ?`), false, itemID); err != nil {
			return fmt.Errorf("demote suggestions: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE match_suggestions SET is_primary = ?, confirmed_by_user = ?
			WHERE item_id = ? AND equipment_id = ?`), true, true, itemID, equipmentID)
		if err != nil {
			return fmt.Errorf("confirm suggestion: %w", err)
		}
		return expectRow(res, "suggestion for item", itemID)
	})
}

// ListSuggestions returns one item's suggestions, best first.
func (s *Store) ListSuggestions(ctx context.Context, itemID uuid.UUID) ([]entity.MatchSuggestion, error) {
	var out []entity.MatchSuggestion
	err := s.db.SelectContext(ctx, &out,
		s.q(`SELECT `+suggestionColumns+` FROM match_suggestions WHERE item_id = ? ORDER BY rank`), itemID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	return out, nil
}

// ListDocumentSuggestions returns the suggestions of every item of a document, grouped by
// item position and ranked within each item.
func (s *Store) ListDocumentSuggestions(ctx context.Context, documentID uuid.UUID) ([]entity.MatchSuggestion, error) {
	var out []entity.MatchSuggestion
	err := s.db.SelectContext(ctx, &out, s.q(`SELECT m.id, m.item_id, m.equipment_id, m.is_primary, m.adherence,
		m.comment, m.rank, m.confirmed_by_user
		FROM match_suggestions m JOIN items i ON i.id = m.item_id
		WHERE i.document_id = ?
		ORDER BY i.position, m.rank`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list document suggestions: %w", err)
	}
	return out, nil
}
