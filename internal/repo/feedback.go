package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var feedbackColumns = []string{"id", "sender", "clinic_id", "message", "message_date", "display_on_dashboard"}

type FeedbackFilter struct {
	ClinicIDs     []uuid.UUID
	Start         *time.Time
	End           *time.Time
	DisplayedOnly bool
}

type FeedbackRepo struct {
	conn dialect.ExecQuerier
}

func (r *FeedbackRepo) Create(ctx context.Context, fb *GenericFeedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = newID()
	}
	if fb.MessageDate.IsZero() {
		fb.MessageDate = time.Now()
	}
	q := builder().Insert(TableFeedback).
		Columns(feedbackColumns...).
		Values(fb.ID, fb.Sender, fb.ClinicID, fb.Message, fb.MessageDate, fb.DisplayOnDashboard)
	_, err := exec(ctx, r.conn, q)
	return err
}

func (r *FeedbackRepo) List(ctx context.Context, f FeedbackFilter) ([]*GenericFeedback, error) {
	s := builder().Select(feedbackColumns...).From(builder().Table(TableFeedback))
	var preds []*sql.Predicate
	if len(f.ClinicIDs) > 0 {
		preds = append(preds, sql.In("clinic_id", lo.ToAnySlice(f.ClinicIDs)...))
	}
	if f.Start != nil {
		preds = append(preds, sql.GTE("message_date", *f.Start))
	}
	if f.End != nil {
		preds = append(preds, sql.LTE("message_date", *f.End))
	}
	if f.DisplayedOnly {
		preds = append(preds, sql.EQ("display_on_dashboard", true))
	}
	if len(preds) > 0 {
		s.Where(sql.And(preds...))
	}
	return queryAll[GenericFeedback](ctx, r.conn, s.OrderBy("message_date"))
}

func (r *FeedbackRepo) SetDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	n, err := exec(ctx, r.conn, builder().Update(TableFeedback).
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
