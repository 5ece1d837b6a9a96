package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// VisitRegistrationError holds the last failure category for a sender.
// There is at most one row per sender.
type VisitRegistrationError struct {
	ent.Schema
}

func (VisitRegistrationError) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		TimestampsMixin{},
	}
}

func (VisitRegistrationError) Fields() []ent.Field {
	return []ent.Field{
		field.String("sender").
			MaxLen(20).
			Unique(),

		field.Enum("error_type").
			Values("clinic", "mobile", "serial", "service"),
	}
}

// VisitRegistrationErrorLog is the append-only history of failed entries.
type VisitRegistrationErrorLog struct {
	ent.Schema
}

func (VisitRegistrationErrorLog) Mixin() []ent.Mixin {
	return []ent.Mixin{
		IDMixin{},
		LoggedAtMixin{},
	}
}

func (VisitRegistrationErrorLog) Fields() []ent.Field {
	return []ent.Field{
		field.String("sender").
			MaxLen(20),

		field.String("error_type").
			MaxLen(50),

		field.String("message").
			MaxLen(160).
			Default(""),
	}
}

func (VisitRegistrationErrorLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sender", "created_at"),
	}
}
