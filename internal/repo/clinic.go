package repo

import (
	"context"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var (
	regionColumns  = []string{"id", "name", "alternate_name", "type", "external_id"}
	clinicColumns  = []string{"id", "name", "slug", "code", "town", "ward", "lga", "category", "year_opened", "created_at", "updated_at"}
	serviceColumns = []string{"id", "name", "slug", "code"}
)

// ---------------------------------------------------------------------------
// Regions
// ---------------------------------------------------------------------------

type RegionRepo struct {
	conn dialect.ExecQuerier
}

// ByName finds a region by name, ignoring case.
func (r *RegionRepo) ByName(ctx context.Context, name string) (*Region, error) {
	q := builder().Select(regionColumns...).From(builder().Table(TableRegions)).
		Where(sql.EqualFold("name", name)).
		Limit(1)
	return queryOne[Region](ctx, r.conn, q)
}

func (r *RegionRepo) Create(ctx context.Context, in *Region) (*Region, error) {
	if in.ID == uuid.Nil {
		in.ID = newID()
	}
	if in.Type == "" {
		in.Type = RegionLGA
	}
	q := builder().Insert(TableRegions).
		Columns(regionColumns...).
		Values(in.ID, in.Name, in.AlternateName, in.Type, in.ExternalID)
	if _, err := exec(ctx, r.conn, q); err != nil {
		return nil, err
	}
	return in, nil
}

// ---------------------------------------------------------------------------
// Clinics
// ---------------------------------------------------------------------------

type ClinicRepo struct {
	conn dialect.ExecQuerier
}

func (r *ClinicRepo) selectClinics() *sql.Selector {
	return builder().Select(clinicColumns...).From(builder().Table(TableClinics))
}

func (r *ClinicRepo) ByCode(ctx context.Context, code int) (*Clinic, error) {
	return queryOne[Clinic](ctx, r.conn, r.selectClinics().Where(sql.EQ("code", code)))
}

func (r *ClinicRepo) BySlug(ctx context.Context, slug string) (*Clinic, error) {
	return queryOne[Clinic](ctx, r.conn, r.selectClinics().Where(sql.EQ("slug", slug)))
}

func (r *ClinicRepo) Get(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return queryOne[Clinic](ctx, r.conn, r.selectClinics().Where(sql.EQ("id", id)))
}

// List returns every clinic ordered by name.
func (r *ClinicRepo) List(ctx context.Context) ([]*Clinic, error) {
	return queryAll[Clinic](ctx, r.conn, r.selectClinics().OrderBy("name"))
}

// ListByLGA returns the clinics of an LGA ordered by name.
func (r *ClinicRepo) ListByLGA(ctx context.Context, lga string) ([]*Clinic, error) {
	q := r.selectClinics().Where(sql.EqualFold("lga", lga)).OrderBy("name")
	return queryAll[Clinic](ctx, r.conn, q)
}

func (r *ClinicRepo) Create(ctx context.Context, in *Clinic) (*Clinic, error) {
	if in.ID == uuid.Nil {
		in.ID = newID()
	}
	now := time.Now()
	in.CreatedAt, in.UpdatedAt = now, now
	q := builder().Insert(TableClinics).
		Columns(clinicColumns...).
		Values(in.ID, in.Name, in.Slug, in.Code, in.Town, in.Ward, in.LGA, in.Category, in.YearOpened, in.CreatedAt, in.UpdatedAt)
	if _, err := exec(ctx, r.conn, q); err != nil {
		return nil, err
	}
	return in, nil
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

type ServiceRepo struct {
	conn dialect.ExecQuerier
}

func (r *ServiceRepo) ByCode(ctx context.Context, code int) (*Service, error) {
	q := builder().Select(serviceColumns...).From(builder().Table(TableServices)).
		Where(sql.EQ("code", code))
	return queryOne[Service](ctx, r.conn, q)
}

func (r *ServiceRepo) List(ctx context.Context) ([]*Service, error) {
	q := builder().Select(serviceColumns...).From(builder().Table(TableServices)).
		OrderBy("code")
	return queryAll[Service](ctx, r.conn, q)
}

func (r *ServiceRepo) Create(ctx context.Context, in *Service) (*Service, error) {
	if in.ID == uuid.Nil {
		in.ID = newID()
	}
	q := builder().Insert(TableServices).
		Columns(serviceColumns...).
		Values(in.ID, in.Name, in.Slug, in.Code)
	if _, err := exec(ctx, r.conn, q); err != nil {
		return nil, err
	}
	return in, nil
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
