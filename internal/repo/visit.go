package repo

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var visitColumns = []string{
	"id", "patient_id", "service_id", "sender", "visit_time",
	"welcome_sent", "survey_scheduled_at", "survey_sent", "survey_started", "survey_completed",
}

// VisitFilter narrows visit listings. Zero values do not filter.
type VisitFilter struct {
	ClinicIDs []uuid.UUID
	ServiceID *uuid.UUID
	Start     *time.Time
	End       *time.Time
}

type VisitRepo struct {
	conn dialect.ExecQuerier
}

func (r *VisitRepo) selectVisits() (*sql.Selector, *sql.SelectTable, *sql.SelectTable) {
	v := builder().Table(TableVisits)
	p := builder().Table(TablePatients)
	cols := lo.Map(visitColumns, func(c string, _ int) string { return v.C(c) })
	cols = append(cols, p.C("clinic_id"), p.C("mobile"), p.C("serial"))
	s := builder().Select(cols...).
		From(v).
		Join(p).On(v.C("patient_id"), p.C("id"))
	return s, v, p
}

func (r *VisitRepo) create(ctx context.Context, p *Patient, in RegisterVisit) (*Visit, error) {
	if in.VisitTime.IsZero() {
		in.VisitTime = time.Now()
	}
	visit := &Visit{
		ID:        newID(),
		PatientID: p.ID,
		ServiceID: in.ServiceID,
		Sender:    in.Sender,
		VisitTime: in.VisitTime,
		ClinicID:  p.ClinicID,
		Mobile:    p.Mobile,
		Serial:    p.Serial,
	}
	q := builder().Insert(TableVisits).
		Columns("id", "patient_id", "service_id", "sender", "visit_time").
		Values(visit.ID, visit.PatientID, visit.ServiceID, visit.Sender, visit.VisitTime)
	if _, err := exec(ctx, r.conn, q); err != nil {
		return nil, err
	}
	return visit, nil
}

func (r *VisitRepo) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	s, v, _ := r.selectVisits()
	return queryOne[Visit](ctx, r.conn, s.Where(sql.EQ(v.C("id"), id)))
}

// List returns visits matching f ordered by visit time.
func (r *VisitRepo) List(ctx context.Context, f VisitFilter) ([]*Visit, error) {
	s, v, p := r.selectVisits()
	var preds []*sql.Predicate
	if len(f.ClinicIDs) > 0 {
		preds = append(preds, sql.In(p.C("clinic_id"), lo.ToAnySlice(f.ClinicIDs)...))
	}
	if f.ServiceID != nil {
		preds = append(preds, sql.EQ(v.C("service_id"), *f.ServiceID))
	}
	if f.Start != nil {
		preds = append(preds, sql.GTE(v.C("visit_time"), *f.Start))
	}
	if f.End != nil {
		preds = append(preds, sql.LTE(v.C("visit_time"), *f.End))
	}
	if len(preds) > 0 {
		s.Where(sql.And(preds...))
	}
	return queryAll[Visit](ctx, r.conn, s.OrderBy(v.C("visit_time")))
}

// PendingWelcome lists visits that have not been handled yet.
func (r *VisitRepo) PendingWelcome(ctx context.Context, limit int) ([]*Visit, error) {
	s, v, _ := r.selectVisits()
	s.Where(sql.IsNull(v.C("welcome_sent"))).
		OrderBy(v.C("visit_time")).
		Limit(limit)
	return queryAll[Visit](ctx, r.conn, s)
}

// Due lists welcomed visits whose survey is scheduled at or before now and
// has not been sent.
func (r *VisitRepo) Due(ctx context.Context, now time.Time, limit int) ([]*Visit, error) {
	s, v, _ := r.selectVisits()
	s.Where(sql.And(
		sql.NotNull(v.C("welcome_sent")),
		sql.LTE(v.C("survey_scheduled_at"), now),
		sql.IsNull(v.C("survey_sent")),
	)).
		OrderBy(v.C("survey_scheduled_at")).
		Limit(limit)
	return queryAll[Visit](ctx, r.conn, s)
}

// KnownSenders returns which of numbers have sent a registration.
func (r *VisitRepo) KnownSenders(ctx context.Context, numbers []string) (map[string]bool, error) {
	numbers = lo.Uniq(lo.Compact(numbers))
	if len(numbers) == 0 {
		return map[string]bool{}, nil
	}
	q := builder().Select("sender").Distinct().
		From(builder().Table(TableVisits)).
		Where(sql.In("sender", lo.ToAnySlice(numbers)...))
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := r.conn.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var senders []string
	if err := sql.ScanSlice(rows, &senders); err != nil {
		return nil, err
	}
	return lo.SliceToMap(senders, func(s string) (string, bool) { return s, true }), nil
}

// ClaimWelcome sets welcome_sent and the survey schedule unless another
// caller already did. A nil scheduledAt means no survey will be sent for the
// visit. It reports whether this call made the change.
func (r *VisitRepo) ClaimWelcome(ctx context.Context, id uuid.UUID, at time.Time, scheduledAt *time.Time) (bool, error) {
	u := builder().Update(TableVisits).
		Set("welcome_sent", at).
		Where(sql.And(sql.EQ("id", id), sql.IsNull("welcome_sent")))
	if scheduledAt != nil {
		u.Set("survey_scheduled_at", *scheduledAt)
	}
	n, err := exec(ctx, r.conn, u)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseWelcome undoes a claim whose welcome message did not go out.
func (r *VisitRepo) ReleaseWelcome(ctx context.Context, id uuid.UUID) error {
	u := builder().Update(TableVisits).
		SetNull("welcome_sent").
		SetNull("survey_scheduled_at").
		Where(sql.And(sql.EQ("id", id), sql.IsNull("survey_sent")))
	_, err := exec(ctx, r.conn, u)
	return err
}

// MarkStage sets a lifecycle timestamp, enforcing order and set-once.
func (r *VisitRepo) MarkStage(ctx context.Context, id uuid.UUID, stage VisitStage, at time.Time) error {
	u := builder().Update(TableVisits).Set(stage.column(), at).Where(stagePredicate(id, stage))
	n, err := exec(ctx, r.conn, u)
	if err != nil {
		return err
	}
	if n == 0 {
		return r.stageError(ctx, id, stage, at)
	}
	return nil
}

// ClaimStage sets a lifecycle timestamp like MarkStage but reports a lost
// race as false instead of an error.
func (r *VisitRepo) ClaimStage(ctx context.Context, id uuid.UUID, stage VisitStage, at time.Time) (bool, error) {
	u := builder().Update(TableVisits).Set(stage.column(), at).Where(stagePredicate(id, stage))
	n, err := exec(ctx, r.conn, u)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseStage clears a claimed stage as long as the next one is unset.
func (r *VisitRepo) ReleaseStage(ctx context.Context, id uuid.UUID, stage VisitStage) error {
	pred := sql.And(sql.EQ("id", id), sql.NotNull(stage.column()))
	if stage < StageSurveyCompleted {
		pred = sql.And(pred, sql.IsNull((stage + 1).column()))
	}
	_, err := exec(ctx, r.conn, builder().Update(TableVisits).SetNull(stage.column()).Where(pred))
	return err
}

func stagePredicate(id uuid.UUID, stage VisitStage) *sql.Predicate {
	pred := sql.And(sql.EQ("id", id), sql.IsNull(stage.column()))
	if stage > StageWelcomeSent {
		pred = sql.And(pred, sql.NotNull((stage - 1).column()))
	}
	return pred
}

func (r *VisitRepo) stageError(ctx context.Context, id uuid.UUID, stage VisitStage, at time.Time) error {
	v, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := v.Advance(stage, at); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s not updated", ErrStageOrder, stage)
}
