package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ---------------------------------------------------------------------------
// Region
// ---------------------------------------------------------------------------

// Region is an administrative area. Clinics are grouped by LGA name.
type Region struct {
	ent.Schema
}

func (Region) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
	}
}

func (Region) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			MaxLen(255).
			NotEmpty(),

		field.String("alternate_name").
			MaxLen(255).
			Default(""),

		field.Enum("type").
			Values("country", "state", "lga").
			Default("lga"),

		field.Int("external_id").
			Comment("Boundary dataset identifier"),
	}
}

func (Region) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("type", "name"),
	}
}

// ---------------------------------------------------------------------------
// Clinic
// ---------------------------------------------------------------------------

type Clinic struct {
	ent.Schema
}

func (Clinic) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		TimestampsMixin{},
	}
}

func (Clinic) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			MaxLen(100).
			NotEmpty().
			Unique(),

		field.String("slug").
			MaxLen(100).
			NotEmpty().
			Unique(),

		field.Int("code").
			Positive().
			Unique().
			Comment("Number staff type as the first field of a registration SMS"),

		field.String("town").
			MaxLen(100).
			Default(""),

		field.String("ward").
			MaxLen(100).
			Default(""),

		field.String("lga").
			MaxLen(100).
			Default("").
			Comment("Matched against Region.name for region reports"),

		field.String("category").
			MaxLen(50).
			Default(""),

		field.String("year_opened").
			MaxLen(4).
			Default(""),
	}
}

func (Clinic) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("lga"),
	}
}

func (Clinic) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("patients", Patient.Type),
		edge.To("feedback", GenericFeedback.Type),
	}
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

type Service struct {
	ent.Schema
}

func (Service) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
	}
}

func (Service) Fields() []ent.Field {
	return []ent.Field{
		field.String("name").
			MaxLen(128).
			NotEmpty(),

		field.String("slug").
			MaxLen(128).
			NotEmpty().
			Unique(),

		field.Int("code").
			Positive().
			Unique(),
	}
}
