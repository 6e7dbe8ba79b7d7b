package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

const itemColumns = `id, document_id, position, lot_number, group_context, item_number, description,
	unit_of_measure, quantity, unit_price, status, error_message`

const insertItem = `INSERT INTO items (` + itemColumns + `) VALUES (:id, :document_id, :position, :lot_number,
	:group_context, :item_number, :description, :unit_of_measure, :quantity, :unit_price, :status, :error_message)`

// CreateItems inserts one batch atomically.
func (s *Store) CreateItems(ctx context.Context, items []entity.ItemRecord) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for i := range items {
			if _, err := tx.NamedExecContext(ctx, insertItem, &items[i]); err != nil {
				s.log.Error("failed to create item", "document_id", items[i].DocumentID, "item_number", items[i].ItemNumber, "error", err)
				return fmt.Errorf("insert item %s: %w", items[i].ItemNumber, err)
			}
		}
		return nil
	})
}

func (s *Store) ListItems(ctx context.Context, documentID uuid.UUID) ([]entity.ItemRecord, error) {
	var items []entity.ItemRecord
	err := s.db.SelectContext(ctx, &items,
		s.q(`SELECT `+itemColumns+` FROM items WHERE document_id = ? ORDER BY position`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status constants.ItemStatus, errMsg *string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE items SET status = ?, error_message = ? WHERE id = ?`),
		status, errMsg, itemID)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	return expectRow(res, "item", itemID)
}

const specColumns = `item_id, category, technology, format, lens_type, ptz, varifocal, min_resolution_mp, poe,
	ir_range_m, power_draw_w, port_count, transfer_speed, storage_tb, observations, confidence`

// UpsertSpec stores the item's spec, replacing a previous normalization.
func (s *Store) UpsertSpec(ctx context.Context, spec *entity.NormalizedItemSpec) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO item_specs (`+specColumns+`)
		VALUES (:item_id, :category, :technology, :format, :lens_type, :ptz, :varifocal, :min_resolution_mp, :poe,
			:ir_range_m, :power_draw_w, :port_count, :transfer_speed, :storage_tb, :observations, :confidence)
		ON CONFLICT (item_id) DO UPDATE SET
			category = excluded.category,
			technology = excluded.technology,
			format = excluded.format,
			lens_type = excluded.lens_type,
			ptz = excluded.ptz,
			varifocal = excluded.varifocal,
			min_resolution_mp = excluded.min_resolution_mp,
			poe = excluded.poe,
			ir_range_m = excluded.ir_range_m,
			power_draw_w = excluded.power_draw_w,
			port_count = excluded.port_count,
			transfer_speed = excluded.transfer_speed,
			storage_tb = excluded.storage_tb,
			observations = excluded.observations,
			confidence = excluded.confidence`, spec)
	if err != nil {
		s.log.Error("failed to upsert spec", "item_id", spec.ItemID, "error", err)
		return fmt.Errorf("upsert spec: %w", err)
	}
	return nil
}

func (s *Store) GetSpec(ctx context.Context, itemID uuid.UUID) (*entity.NormalizedItemSpec, error) {
	var spec entity.NormalizedItemSpec
	err := s.db.GetContext(ctx, &spec, s.q(`SELECT `+specColumns+` FROM item_specs WHERE item_id = ?`), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("spec of item %s: %w", itemID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spec: %w", err)
	}
	return &spec, nil
}

// ListSpecs returns the specs of a document's items keyed by item id.
func (s *Store) ListSpecs(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]entity.NormalizedItemSpec, error) {
	var specs []entity.NormalizedItemSpec
	err := s.db.SelectContext(ctx, &specs, s.q(`SELECT s.item_id, s.category, s.technology, s.format, s.lens_type,
		s.ptz, s.varifocal, s.min_resolution_mp, s.poe, s.ir_range_m, s.power_draw_w, s.port_count,
		s.transfer_speed, s.storage_tb, s.observations, s.confidence
		FROM item_specs s JOIN items i ON i.id = s.item_id
		WHERE i.document_id = ?`), documentID)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	out := make(map[uuid.UUID]entity.NormalizedItemSpec, len(specs))
	for _, sp := range specs {
		out[sp.ItemID] = sp
	}
	return out, nil
}
