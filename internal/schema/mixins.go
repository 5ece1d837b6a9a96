package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"

	"github.com/google/uuid"
)

// newID returns a time-ordered UUIDv7.
func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return id
}

// IDMixin is the UUIDv7 primary key shared by every table.
type IDMixin struct {
	mixin.Schema
}

func (IDMixin) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(newID).
			Immutable(),
	}
}

// TimestampsMixin tracks rows that staff or the registration flow edit.
type TimestampsMixin struct {
	mixin.Schema
}

func (TimestampsMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// LoggedAtMixin is for append-only history rows.
type LoggedAtMixin struct {
	mixin.Schema
}

func (LoggedAtMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// SurveyLifecycleMixin holds the stage timestamps a visit moves through
// after registration. A stage is reached once its column is set, and the
// columns are only ever set in order.
type SurveyLifecycleMixin struct {
	mixin.Schema
}

// surveyStages lists the lifecycle columns in the order they are set.
var surveyStages = []string{
	"welcome_sent",
	"survey_scheduled_at",
	"survey_sent",
	"survey_started",
	"survey_completed",
}

func (SurveyLifecycleMixin) Fields() []ent.Field {
	fields := make([]ent.Field, len(surveyStages))
	for i, name := range surveyStages {
		fields[i] = field.Time(name).
			Optional().
			Nillable()
	}
	return fields
}

func (SurveyLifecycleMixin) Indexes() []ent.Index {
	return []ent.Index{
		// Pending welcome SMS.
		index.Fields("welcome_sent"),
		// Scheduled surveys not yet dispatched.
		index.Fields("survey_scheduled_at", "survey_sent"),
	}
}
