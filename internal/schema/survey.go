package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Survey
// ---------------------------------------------------------------------------

type Survey struct {
	ent.Schema
}

func (Survey) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
	}
}

func (Survey) Fields() []ent.Field {
	return []ent.Field{
		field.Int("flow_id").
			Unique().
			Comment("Flow identifier on the survey platform"),

		field.String("name").
			MaxLen(128),

		field.Bool("active").
			Default(true),

		field.String("role").
			MaxLen(32).
			Default("").
			Comment("e.g. patient-feedback"),
	}
}

func (Survey) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("questions", SurveyQuestion.Type),
	}
}

// ---------------------------------------------------------------------------
// SurveyQuestion
// ---------------------------------------------------------------------------

type SurveyQuestion struct {
	ent.Schema
}

func (SurveyQuestion) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
	}
}

func (SurveyQuestion) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("survey_id", uuid.UUID{}).
			Comment("FK → surveys.id"),

		field.String("question_id").
			MaxLen(128).
			Comment("Node identifier on the survey platform"),

		field.Enum("question_type").
			Values("open-ended", "multiple-choice"),

		field.String("label").
			MaxLen(128),

		field.JSON("categories", []string{}).
			Optional().
			Comment("Ordered answers; the first is the primary answer"),

		field.String("question").
			MaxLen(255).
			Default(""),

		field.Enum("designation").
			Values("positive", "negative", "neutral").
			Optional().
			Nillable(),

		field.String("statistic_key").
			MaxLen(64).
			Default(""),

		field.Int("position").
			Default(0),
	}
}

func (SurveyQuestion) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("survey", Survey.Type).
			Ref("questions").
			Unique().
			Required().
			Field("survey_id"),
	}
}

func (SurveyQuestion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("survey_id", "label").Unique(),
	}
}

// ---------------------------------------------------------------------------
// SurveyQuestionResponse
// ---------------------------------------------------------------------------

// SurveyQuestionResponse copies clinic_id and service_id from its visit when
// it is written. They are never updated afterwards.
type SurveyQuestionResponse struct {
	ent.Schema
}

func (SurveyQuestionResponse) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		TimestampsMixin{},
	}
}

func (SurveyQuestionResponse) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("question_id", uuid.UUID{}).
			Comment("FK → survey_questions.id"),

		field.UUID("visit_id", uuid.UUID{}).
			Optional().
			Nillable(),

		field.UUID("clinic_id", uuid.UUID{}).
			Optional().
			Nillable(),

		field.UUID("service_id", uuid.UUID{}).
			Optional().
			Nillable(),

		field.String("response").
			MaxLen(255),

		field.Time("datetime").
			Default(time.Now),

		field.Bool("display_on_dashboard").
			Default(true),
	}
}

func (SurveyQuestionResponse) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("question", SurveyQuestion.Type).
			Unique().
			Required().
			Field("question_id"),
		edge.To("visit", Visit.Type).
			Unique().
			Field("visit_id"),
	}
}

func (SurveyQuestionResponse) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("visit_id", "question_id").Unique(),
		index.Fields("clinic_id", "datetime"),
		index.Fields("service_id"),
	}
}
