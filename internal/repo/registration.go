package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
)

var registrationErrorColumns = []string{"id", "sender", "error_type", "created_at", "updated_at"}

// RegistrationErrorRepo stores the one outstanding error per sender and the
// append-only error log.
type RegistrationErrorRepo struct {
	conn dialect.ExecQuerier
}

func (r *RegistrationErrorRepo) Get(ctx context.Context, sender string) (*RegistrationError, error) {
	q := builder().Select(registrationErrorColumns...).
		From(builder().Table(TableRegistrationErrs)).
		Where(sql.EQ("sender", sender))
	return queryOne[RegistrationError](ctx, r.conn, q)
}

// Save records errType as the sender's outstanding error, replacing any
// previous one.
func (r *RegistrationErrorRepo) Save(ctx context.Context, sender string, errType ErrorType) error {
	now := time.Now()
	q := builder().Insert(TableRegistrationErrs).
		Columns(registrationErrorColumns...).
		Values(newID(), sender, errType, now, now).
		OnConflict(
			sql.ConflictColumns("sender"),
			sql.ResolveWith(func(u *sql.UpdateSet) {
				u.SetExcluded("error_type")
				u.SetExcluded("updated_at")
			}),
		)
	_, err := exec(ctx, r.conn, q)
	return err
}

func (r *RegistrationErrorRepo) Delete(ctx context.Context, sender string) error {
	_, err := exec(ctx, r.conn, builder().Delete(TableRegistrationErrs).Where(sql.EQ("sender", sender)))
	return err
}

// Log appends to the error log. errType is empty for incomplete entries.
func (r *RegistrationErrorRepo) Log(ctx context.Context, sender, errType, message string) error {
	q := builder().Insert(TableRegistrationLogs).
		Columns("id", "sender", "error_type", "message", "created_at").
		Values(newID(), sender, errType, message, time.Now())
	_, err := exec(ctx, r.conn, q)
	return err
}
