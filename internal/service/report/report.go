// Package report aggregates visits and survey answers into clinic, region
// and completion reports, and exports them.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/email"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	"github.com/Alijeyrad/myvoice_backend/pkg/util/stats"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type Store interface {
	ClinicBySlug(ctx context.Context, slug string) (*repo.Clinic, error)
	Clinics(ctx context.Context) ([]*repo.Clinic, error)
	ClinicsByLGA(ctx context.Context, lga string) ([]*repo.Clinic, error)
	RegionByName(ctx context.Context, name string) (*repo.Region, error)
	Services(ctx context.Context) ([]*repo.Service, error)
	ActiveSurvey(ctx context.Context) (*repo.Survey, error)
	Questions(ctx context.Context, surveyID uuid.UUID) ([]*repo.Question, error)
	Visits(ctx context.Context, f repo.VisitFilter) ([]*repo.Visit, error)
	Responses(ctx context.Context, f repo.ResponseFilter) ([]*repo.Response, error)
	Feedback(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error)
}

// ObjectStore keeps exported files.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignDownload(ctx context.Context, key string) (string, error)
}

type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, m email.Message) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Query narrows a report. Zero values do not filter.
type Query struct {
	// Service is a service slug.
	Service string
	Start   *time.Time
	End     *time.Time
}

type Service interface {
	Clinic(ctx context.Context, slug string, q Query) (*ClinicReport, error)
	Weekly(ctx context.Context, slug string, q Query) ([]WeekRow, error)
	// Region reports on the week containing day, or on all time when day
	// is nil.
	Region(ctx context.Context, name string, day *time.Time) (*RegionReport, error)
	Completion(ctx context.Context, q Query) ([]CompletionRow, error)
	ExportClinic(ctx context.Context, slug string) (*Export, error)
	SendRegionDigest(ctx context.Context, name string, day *time.Time) error
}

type Config struct {
	ExportPrefix     string
	DigestRecipients []string
	AppName          string
}

type Deps struct {
	Store   Store
	Objects ObjectStore
	Mailer  Mailer
	Metrics *observability.Metrics
	Log     *slog.Logger
}

type reportService struct {
	Deps
	cfg Config
	now func() time.Time
}

func New(deps Deps, cfg Config) Service {
	return &reportService{Deps: deps, cfg: cfg, now: time.Now}
}

func (s *reportService) questions(ctx context.Context) (*QuestionSet, error) {
	survey, err := s.Store.ActiveSurvey(ctx)
	if repo.IsNotFound(err) {
		return nil, ErrNoActiveSurvey
	}
	if err != nil {
		return nil, err
	}
	qs, err := s.Store.Questions(ctx, survey.ID)
	if err != nil {
		return nil, err
	}
	return NewQuestionSet(qs)
}

func (s *reportService) services(ctx context.Context) (map[uuid.UUID]*repo.Service, error) {
	list, err := s.Store.Services(ctx)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(list, func(sv *repo.Service) (uuid.UUID, *repo.Service) { return sv.ID, sv }), nil
}

// serviceID resolves q.Service against services.
func serviceID(q Query, services map[uuid.UUID]*repo.Service) (*uuid.UUID, error) {
	if q.Service == "" {
		return nil, nil
	}
	for id, sv := range services {
		if strings.EqualFold(sv.Slug, q.Service) || strings.EqualFold(sv.Name, q.Service) {
			return &id, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrServiceNotFound, q.Service)
}

func (s *reportService) clinic(ctx context.Context, slug string) (*repo.Clinic, error) {
	c, err := s.Store.ClinicBySlug(ctx, slug)
	if repo.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %q", ErrClinicNotFound, slug)
	}
	return c, err
}

// ---------------------------------------------------------------------------
// Clinic
// ---------------------------------------------------------------------------

func (s *reportService) clinicInput(ctx context.Context, slug string, q Query) (*QuestionSet, *ClinicInput, error) {
	qs, err := s.questions(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.clinic(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	services, err := s.services(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc, err := serviceID(q, services)
	if err != nil {
		return nil, nil, err
	}

	ids := []uuid.UUID{c.ID}
	visits, err := s.Store.Visits(ctx, repo.VisitFilter{ClinicIDs: ids, ServiceID: svc, Start: q.Start, End: q.End})
	if err != nil {
		return nil, nil, fmt.Errorf("loading visits: %w", err)
	}
	responses, err := s.Store.Responses(ctx, repo.ResponseFilter{
		ClinicIDs: ids, ServiceID: svc, Start: q.Start, End: q.End, DisplayedOnly: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading responses: %w", err)
	}
	feedback, err := s.Store.Feedback(ctx, repo.FeedbackFilter{ClinicIDs: ids, Start: q.Start, End: q.End, DisplayedOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("loading feedback: %w", err)
	}

	return qs, &ClinicInput{
		Clinic:    c,
		Visits:    visits,
		Responses: responses,
		Feedback:  feedback,
		Services:  services,
		Start:     q.Start,
		End:       q.End,
		Now:       s.now(),
	}, nil
}

func (s *reportService) Clinic(ctx context.Context, slug string, q Query) (*ClinicReport, error) {
	qs, in, err := s.clinicInput(ctx, slug, q)
	if err != nil {
		return nil, err
	}
	return qs.ComposeClinic(*in), nil
}

func (s *reportService) Weekly(ctx context.Context, slug string, q Query) ([]WeekRow, error) {
	rep, err := s.Clinic(ctx, slug, q)
	if err != nil {
		return nil, err
	}
	return rep.Weekly, nil
}

// ---------------------------------------------------------------------------
// Region
// ---------------------------------------------------------------------------

func (s *reportService) Region(ctx context.Context, name string, day *time.Time) (*RegionReport, error) {
	qs, in, err := s.regionInput(ctx, name, day)
	if err != nil {
		return nil, err
	}
	return qs.ComposeRegion(*in), nil
}

func (s *reportService) regionInput(ctx context.Context, name string, day *time.Time) (*QuestionSet, *RegionInput, error) {
	qs, err := s.questions(ctx)
	if err != nil {
		return nil, nil, err
	}
	region, err := s.Store.RegionByName(ctx, name)
	if repo.IsNotFound(err) {
		return nil, nil, fmt.Errorf("%w: %q", ErrRegionNotFound, name)
	}
	if err != nil {
		return nil, nil, err
	}
	clinics, err := s.Store.ClinicsByLGA(ctx, region.Name)
	if err != nil {
		return nil, nil, err
	}
	services, err := s.services(ctx)
	if err != nil {
		return nil, nil, err
	}

	var start, end *time.Time
	if day != nil {
		ws, we := stats.WeekStart(*day), stats.WeekEnd(*day)
		start, end = &ws, &we
	}
	in := &RegionInput{Region: region, Clinics: clinics, Services: services, Start: start, End: end}
	if len(clinics) == 0 {
		return qs, in, nil
	}
	ids := lo.Map(clinics, func(c *repo.Clinic, _ int) uuid.UUID { return c.ID })
	if in.Visits, err = s.Store.Visits(ctx, repo.VisitFilter{ClinicIDs: ids, Start: start, End: end}); err != nil {
		return nil, nil, fmt.Errorf("loading visits: %w", err)
	}
	if in.Responses, err = s.Store.Responses(ctx, repo.ResponseFilter{ClinicIDs: ids, Start: start, End: end}); err != nil {
		return nil, nil, fmt.Errorf("loading responses: %w", err)
	}
	return qs, in, nil
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func (s *reportService) Completion(ctx context.Context, q Query) ([]CompletionRow, error) {
	clinics, err := s.Store.Clinics(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.services(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := serviceID(q, services)
	if err != nil {
		return nil, err
	}
	visits, err := s.Store.Visits(ctx, repo.VisitFilter{ServiceID: svc, Start: q.Start, End: q.End})
	if err != nil {
		return nil, fmt.Errorf("loading visits: %w", err)
	}
	return ComposeCompletion(clinics, visits), nil
}
