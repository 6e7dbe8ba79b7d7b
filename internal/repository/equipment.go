package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joseph-ayodele/procurement-tracker/internal/entity"
)

const equipmentColumns = `id, seq, name, manufacturer, model, category, technology, format, lens_type, ptz,
	varifocal, min_resolution_mp, poe, ir_range_m, power_draw_w, port_count, transfer_speed, storage_tb`

// ListEquipment returns the whole catalog in insertion order.
func (s *Store) ListEquipment(ctx context.Context) ([]entity.Equipment, error) {
	var out []entity.Equipment
	if err := s.db.SelectContext(ctx, &out, `SELECT `+equipmentColumns+` FROM equipment ORDER BY seq`); err != nil {
		s.log.Error("failed to list equipment", "error", err)
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	return out, nil
}

// UpsertEquipment inserts new catalog entries and updates existing ones, matched on
// (manufacturer, model). New entries are appended after the current last seq.
func (s *Store) UpsertEquipment(ctx context.Context, items []entity.Equipment) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		var last int64
		if err := tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(seq), 0) FROM equipment`); err != nil {
			return fmt.Errorf("read catalog seq: %w", err)
		}
		for i := range items {
			eq := items[i]
			if eq.ID == uuid.Nil {
				eq.ID = uuid.New()
			}
			last++
			eq.Seq = last
			_, err := tx.NamedExecContext(ctx, `INSERT INTO equipment (`+equipmentColumns+`)
				VALUES (:id, :seq, :name, :manufacturer, :model, :category, :technology, :format, :lens_type, :ptz,
					:varifocal, :min_resolution_mp, :poe, :ir_range_m, :power_draw_w, :port_count, :transfer_speed, :storage_tb)
				ON CONFLICT (manufacturer, model) DO UPDATE SET
					name = excluded.name,
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
					storage_tb = excluded.storage_tb`, &eq)
			if err != nil {
				return fmt.Errorf("upsert equipment %s %s: %w", eq.Manufacturer, eq.Model, err)
			}
		}
		s.log.Info("catalog.upsert.ok", "entries", len(items))
		return nil
	})
}
