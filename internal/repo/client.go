// Package repo is the data access layer. Queries are built with ent's SQL
// builder and scanned with ent's ScanSlice over the tables declared in
// internal/schema.
package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
)

// Table names.
const (
	TableRegions          = "regions"
	TableClinics          = "clinics"
	TableServices         = "services"
	TablePatients         = "patients"
	TableVisits           = "visits"
	TableRegistrationErrs = "visit_registration_errors"
	TableRegistrationLogs = "visit_registration_error_logs"
	TableSurveys          = "surveys"
	TableQuestions        = "survey_questions"
	TableResponses        = "survey_question_responses"
	TableFeedback         = "generic_feedbacks"
)

// Client bundles the per-entity repositories over one connection or
// transaction.
type Client struct {
	drv  *sql.Driver
	conn dialect.ExecQuerier

	Region            *RegionRepo
	Clinic            *ClinicRepo
	Service           *ServiceRepo
	Patient           *PatientRepo
	Visit             *VisitRepo
	RegistrationError *RegistrationErrorRepo
	Survey            *SurveyRepo
	Response          *ResponseRepo
	Feedback          *FeedbackRepo
}

// NewClient creates a Client over an ent SQL driver.
func NewClient(drv *sql.Driver) *Client {
	c := newClient(drv)
	c.drv = drv
	return c
}

func newClient(conn dialect.ExecQuerier) *Client {
	c := &Client{conn: conn}
	c.Region = &RegionRepo{conn: conn}
	c.Clinic = &ClinicRepo{conn: conn}
	c.Service = &ServiceRepo{conn: conn}
	c.Patient = &PatientRepo{conn: conn}
	c.Visit = &VisitRepo{conn: conn}
	c.RegistrationError = &RegistrationErrorRepo{conn: conn}
	c.Survey = &SurveyRepo{conn: conn}
	c.Response = &ResponseRepo{conn: conn}
	c.Feedback = &FeedbackRepo{conn: conn}
	return c
}

// Driver returns the underlying ent driver (nil inside a transaction).
func (c *Client) Driver() *sql.Driver { return c.drv }

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.drv == nil {
		return nil
	}
	return c.drv.DB().PingContext(ctx)
}

func (c *Client) Close() error {
	if c.drv == nil {
		return nil
	}
	return c.drv.Close()
}

// WithTx runs fn inside a transaction, rolling back when fn fails.
func (c *Client) WithTx(ctx context.Context, fn func(tx *Client) error) error {
	if c.drv == nil {
		return fn(c)
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(newClient(tx)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// builder returns a postgres statement builder.
func builder() *sql.DialectBuilder {
	return sql.Dialect(dialect.Postgres)
}

type querier interface {
	Query() (string, []any)
}

func queryAll[T any](ctx context.Context, conn dialect.ExecQuerier, q querier) ([]*T, error) {
	query, args := q.Query()
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*T
	if err := sql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func queryOne[T any](ctx context.Context, conn dialect.ExecQuerier, q querier) (*T, error) {
	out, err := queryAll[T](ctx, conn, q)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

func exec(ctx context.Context, conn dialect.ExecQuerier, q querier) (int64, error) {
	query, args := q.Query()
	var res stdsql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
