package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"
)

// MatchSuggestion ranks one catalog entry for one item. At most one row per item is
// primary; writers demote before promoting.
type MatchSuggestion struct{ ent.Schema }

func (MatchSuggestion) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "match_suggestions"},
	}
}

func (MatchSuggestion) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("item_id", uuid.UUID{}),
		field.UUID("equipment_id", uuid.UUID{}),
		field.Bool("is_primary").Default(false),
		field.Float("adherence").Min(0).Max(1),
		field.String("comment"),
		field.Int("rank").NonNegative(),
		field.Bool("confirmed_by_user").Default(false),
	}
}

func (MatchSuggestion) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("item", Item.Type).
			Ref("suggestions").
			Field("item_id").
			Required().
			Unique(),
		edge.From("equipment", Equipment.Type).
			Ref("suggestions").
			Field("equipment_id").
			Required().
			Unique(),
	}
}

func (MatchSuggestion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("item_id", "equipment_id").Unique(),
		index.Fields("item_id", "rank"),
	}
}
