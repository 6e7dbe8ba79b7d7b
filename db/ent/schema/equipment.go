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

// Equipment is a catalog entry. Seq is insertion order and breaks ranking ties.
type Equipment struct{ ent.Schema }

func (Equipment) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "equipment"},
	}
}

func (Equipment) Fields() []ent.Field {
	fields := []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.Int64("seq").Unique().Immutable(),
		field.String("name").NotEmpty(),
		field.String("manufacturer"),
		field.String("model"),
		field.String("category"),
		field.String("technology"),
		field.String("format"),
	}
	return append(fields, technicalAttributes()...)
}

func (Equipment) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("suggestions", MatchSuggestion.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

func (Equipment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("manufacturer", "model").Unique(),
	}
}
