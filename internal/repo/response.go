package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var responseColumns = []string{
	"id", "question_id", "visit_id", "clinic_id", "service_id",
	"response", "datetime", "display_on_dashboard",
}

// ResponseFilter narrows response listings. Zero values do not filter.
type ResponseFilter struct {
	ClinicIDs   []uuid.UUID
	ServiceID   *uuid.UUID
	QuestionIDs []uuid.UUID
	Start       *time.Time
	End         *time.Time
	// DisplayedOnly keeps responses shown on the dashboard.
	DisplayedOnly bool
}

type ResponseRepo struct {
	conn dialect.ExecQuerier
}

// Save stores an answer. A repeated answer to the same question for the
// same visit replaces the earlier one.
func (r *ResponseRepo) Save(ctx context.Context, resp *Response) error {
	if resp.ID == uuid.Nil {
		resp.ID = newID()
	}
	if resp.Datetime.IsZero() {
		resp.Datetime = time.Now()
	}
	now := time.Now()
	q := builder().Insert(TableResponses).
		Columns(append(responseColumns, "created_at", "updated_at")...).
		Values(resp.ID, resp.QuestionID, resp.VisitID, resp.ClinicID, resp.ServiceID,
			resp.Response, resp.Datetime, resp.DisplayOnDashboard, now, now).
		OnConflict(
			sql.ConflictColumns("visit_id", "question_id"),
			sql.ResolveWith(func(u *sql.UpdateSet) {
				u.SetExcluded("response")
				u.SetExcluded("datetime")
				u.SetExcluded("updated_at")
			}),
		)
	_, err := exec(ctx, r.conn, q)
	return err
}

// List returns responses joined with their question, ordered by time.
func (r *ResponseRepo) List(ctx context.Context, f ResponseFilter) ([]*Response, error) {
	t := builder().Table(TableResponses)
	qt := builder().Table(TableQuestions)
	cols := lo.Map(responseColumns, func(c string, _ int) string { return t.C(c) })
	cols = append(cols,
		sql.As(qt.C("label"), "question_label"),
		qt.C("question_type"),
	)
	s := builder().Select(cols...).From(t).Join(qt).On(t.C("question_id"), qt.C("id"))

	var preds []*sql.Predicate
	if len(f.ClinicIDs) > 0 {
		preds = append(preds, sql.In(t.C("clinic_id"), lo.ToAnySlice(f.ClinicIDs)...))
	}
	if f.ServiceID != nil {
		preds = append(preds, sql.EQ(t.C("service_id"), *f.ServiceID))
	}
	if len(f.QuestionIDs) > 0 {
		preds = append(preds, sql.In(t.C("question_id"), lo.ToAnySlice(f.QuestionIDs)...))
	}
	if f.Start != nil {
		preds = append(preds, sql.GTE(t.C("datetime"), *f.Start))
	}
	if f.End != nil {
		preds = append(preds, sql.LTE(t.C("datetime"), *f.End))
	}
	if f.DisplayedOnly {
		preds = append(preds, sql.EQ(t.C("display_on_dashboard"), true))
	}
	if len(preds) > 0 {
		s.Where(sql.And(preds...))
	}
	return queryAll[Response](ctx, r.conn, s.OrderBy(t.C("datetime")))
}

// SetDisplay toggles whether a response is shown on dashboards.
func (r *ResponseRepo) SetDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	n, err := exec(ctx, r.conn, builder().Update(TableResponses).
		Set("display_on_dashboard", display).
		Where(sql.EQ("id", id)))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
