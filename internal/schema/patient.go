package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"

	"github.com/google/uuid"
)

// Patient is identified by (clinic, serial). Rows are created lazily on the
// first valid registration for the pair.
type Patient struct {
	ent.Schema
}

func (Patient) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		TimestampsMixin{},
	}
}

func (Patient) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("clinic_id", uuid.UUID{}).
			Comment("FK → clinics.id"),

		field.Int("serial").
			NonNegative().
			Comment("Clinic card number written on the registration SMS"),

		field.String("mobile").
			MaxLen(11).
			Default(""),

		field.String("name").
			MaxLen(50).
			Default(""),
	}
}

func (Patient) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("clinic", Clinic.Type).
			Ref("patients").
			Unique().
			Required().
			Field("clinic_id"),
		edge.To("visits", Visit.Type),
	}
}

func (Patient) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("clinic_id", "serial").Unique(),
		index.Fields("mobile"),
	}
}

// ---------------------------------------------------------------------------
// Visit
// ---------------------------------------------------------------------------

// Visit is one registration event. The survey timestamps are set at most
// once and in order: welcome, survey sent, survey started, survey completed.
type Visit struct {
	ent.Schema
}

func (Visit) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		SurveyLifecycleMixin{},
	}
}

func (Visit) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("patient_id", uuid.UUID{}).
			Comment("FK → patients.id"),

		field.UUID("service_id", uuid.UUID{}).
			Optional().
			Nillable().
			Comment("FK → services.id"),

		field.String("sender").
			MaxLen(20).
			Comment("Local-format number of the staff phone that sent the SMS"),

		field.Time("visit_time").
			Default(time.Now),
	}
}

func (Visit) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("patient", Patient.Type).
			Ref("visits").
			Unique().
			Required().
			Field("patient_id"),
		edge.To("service", Service.Type).
			Unique().
			Field("service_id"),
	}
}

func (Visit) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("patient_id"),
		index.Fields("sender"),
	}
}
