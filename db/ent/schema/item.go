package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/db/ent/schema/utils"
)

// Item is one priced line item of a document, in document order.
type Item struct{ ent.Schema }

func (Item) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "items"},
	}
}

func (Item) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("document_id", uuid.UUID{}),
		field.Int("position").NonNegative(),
		field.String("lot_number"),
		field.String("group_context").Optional().Nillable(),
		field.String("item_number"),
		field.String("description").NotEmpty().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.String("unit_of_measure"),
		field.Int64("quantity"),
		field.Float("unit_price").
			SchemaType(map[string]string{dialect.Postgres: "numeric(14,2)"}),
		field.String("status").Validate(utils.EnumValidator(constants.ItemStatuses...)),
		field.String("error_message").Optional().Nillable(),
	}
}

func (Item) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("items").
			Field("document_id").
			Required().
			Unique(),
		edge.To("suggestions", MatchSuggestion.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("logs", ProcessLog.Type),
	}
}

func (Item) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "position").Unique(),
	}
}
