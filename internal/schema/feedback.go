package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// GenericFeedback is free text that is not tied to a survey question.
type GenericFeedback struct {
	ent.Schema
}

func (GenericFeedback) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
	}
}

func (GenericFeedback) Fields() []ent.Field {
	return []ent.Field{
		field.String("sender").
			MaxLen(20),

		field.UUID("clinic_id", uuid.UUID{}).
			Optional().
			Nillable(),

		field.String("message").
			MaxLen(200).
			Default(""),

		field.Time("message_date").
			Default(time.Now),

		field.Bool("display_on_dashboard").
			Default(true),
	}
}

func (GenericFeedback) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("clinic", Clinic.Type).
			Ref("feedback").
			Unique().
			Field("clinic_id"),
	}
}

func (GenericFeedback) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("clinic_id", "message_date"),
	}
}
