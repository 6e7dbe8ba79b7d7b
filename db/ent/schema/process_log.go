package schema

import (
	"time"

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

// ProcessLog is the append-only audit trail of stage executions.
type ProcessLog struct{ ent.Schema }

func (ProcessLog) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "process_logs"},
	}
}

func (ProcessLog) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("document_id", uuid.UUID{}).Immutable(),
		field.UUID("item_id", uuid.UUID{}).Optional().Nillable().Immutable(),
		field.String("stage").Validate(utils.EnumValidator(constants.Stages...)).Immutable(),
		field.String("status").Validate(utils.EnumValidator(constants.LogStatuses...)).Immutable(),
		field.String("message").Immutable(),
		field.Int64("duration_ms").NonNegative().Immutable(),
		field.JSON("details", map[string]any{}).
			Optional().
			SchemaType(map[string]string{dialect.Postgres: "jsonb"}),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (ProcessLog) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("logs").
			Field("document_id").
			Required().
			Unique().
			Immutable(),
		edge.From("item", Item.Type).
			Ref("logs").
			Field("item_id").
			Unique().
			Immutable(),
	}
}

func (ProcessLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "created_at"),
	}
}
