package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var patientColumns = []string{"id", "clinic_id", "serial", "mobile", "name", "created_at", "updated_at"}

type PatientRepo struct {
	conn dialect.ExecQuerier
}

// Upsert returns the patient for (clinic, serial), creating it on first use.
// A non-empty mobile replaces the stored one.
func (r *PatientRepo) Upsert(ctx context.Context, clinicID uuid.UUID, serial int, mobile string) (*Patient, error) {
	now := time.Now()
	q := builder().Insert(TablePatients).
		Columns(patientColumns...).
		Values(newID(), clinicID, serial, mobile, "", now, now).
		OnConflict(
			sql.ConflictColumns("clinic_id", "serial"),
			sql.ResolveWith(func(u *sql.UpdateSet) {
				if mobile != "" {
					u.SetExcluded("mobile")
				}
				u.SetExcluded("updated_at")
			}),
		).
		Returning(patientColumns...)
	return queryOne[Patient](ctx, r.conn, q)
}

// RegisterVisit is the input of Client.RegisterVisit.
type RegisterVisit struct {
	ClinicID  uuid.UUID
	Serial    int
	Mobile    string
	ServiceID *uuid.UUID
	Sender    string
	VisitTime time.Time

	// ClearErrorState drops the sender's outstanding registration error in
	// the same transaction.
	ClearErrorState bool
}

// RegisterVisit upserts the patient and records a visit in one transaction.
func (c *Client) RegisterVisit(ctx context.Context, in RegisterVisit) (*Visit, error) {
	var visit *Visit
	err := c.WithTx(ctx, func(tx *Client) error {
		p, err := tx.Patient.Upsert(ctx, in.ClinicID, in.Serial, in.Mobile)
		if err != nil {
			return fmt.Errorf("upserting patient: %w", err)
		}
		visit, err = tx.Visit.create(ctx, p, in)
		if err != nil {
			return fmt.Errorf("creating visit: %w", err)
		}
		if in.ClearErrorState {
			if err := tx.RegistrationError.Delete(ctx, in.Sender); err != nil {
				return fmt.Errorf("clearing error state: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visit, nil
}
