package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/db/ent/schema/utils"
)

// ItemSpec is the normalized reading of an item, keyed by the item it belongs to.
// Re-normalization overwrites it.
type ItemSpec struct{ ent.Schema }

func (ItemSpec) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "item_specs"},
	}
}

func (ItemSpec) Fields() []ent.Field {
	fields := []ent.Field{
		field.UUID("id", uuid.UUID{}).StorageKey("item_id").Immutable(),
		field.String("category").Validate(utils.EnumValidator(constants.AsStringSlice()...)),
		field.String("technology"),
		field.String("format"),
	}
	fields = append(fields, technicalAttributes()...)
	return append(fields,
		field.String("observations"),
		field.Float("confidence").Min(0).Max(1),
	)
}

// technicalAttributes are shared by specs and catalog equipment.
func technicalAttributes() []ent.Field {
	return []ent.Field{
		field.String("lens_type").Optional().Nillable(),
		field.Bool("ptz").Optional().Nillable(),
		field.Bool("varifocal").Optional().Nillable(),
		field.Float("min_resolution_mp").Optional().Nillable(),
		field.Bool("poe").Optional().Nillable(),
		field.Float("ir_range_m").Optional().Nillable(),
		field.Float("power_draw_w").Optional().Nillable(),
		field.Int("port_count").Optional().Nillable(),
		field.String("transfer_speed").Optional().Nillable(),
		field.Float("storage_tb").Optional().Nillable(),
	}
}
