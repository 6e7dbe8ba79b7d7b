package schema

import (
	"encoding/json"
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/constants"
	"github.com/joseph-ayodele/procurement-tracker/db/ent/schema/utils"
)

// Document is one successfully extracted procurement document. Rows only exist for
// documents with a non-empty identifier.
type Document struct{ ent.Schema }

func (Document) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "documents"},
	}
}

func (Document) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.String("slug").NotEmpty().MaxLen(constants.MaxSlugLen).Unique(),
		field.String("kind").Validate(utils.EnumValidator(constants.DocumentKinds...)),
		field.String("filename"),
		field.String("status").Validate(utils.EnumValidator(constants.DocumentStatuses...)),
		field.String("identifier").NotEmpty().MaxLen(120),
		field.JSON("extracted", json.RawMessage{}).
			Optional().
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (Document) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("items", Item.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("logs", ProcessLog.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}
