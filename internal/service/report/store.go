package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
)

type repoStore struct {
	db *repo.Client
}

func NewStore(db *repo.Client) Store {
	return &repoStore{db: db}
}

func (s *repoStore) ClinicBySlug(ctx context.Context, slug string) (*repo.Clinic, error) {
	return s.db.Clinic.BySlug(ctx, slug)
}

func (s *repoStore) Clinics(ctx context.Context) ([]*repo.Clinic, error) {
	return s.db.Clinic.List(ctx)
}

func (s *repoStore) ClinicsByLGA(ctx context.Context, lga string) ([]*repo.Clinic, error) {
	return s.db.Clinic.ListByLGA(ctx, lga)
}

func (s *repoStore) RegionByName(ctx context.Context, name string) (*repo.Region, error) {
	return s.db.Region.ByName(ctx, name)
}

func (s *repoStore) Services(ctx context.Context) ([]*repo.Service, error) {
	return s.db.Service.List(ctx)
}

func (s *repoStore) ActiveSurvey(ctx context.Context) (*repo.Survey, error) {
	return s.db.Survey.ActiveByRole(ctx, constants.SurveyRolePatientFeedback)
}

func (s *repoStore) Questions(ctx context.Context, surveyID uuid.UUID) ([]*repo.Question, error) {
	return s.db.Survey.Questions(ctx, surveyID)
}

func (s *repoStore) Visits(ctx context.Context, f repo.VisitFilter) ([]*repo.Visit, error) {
	return s.db.Visit.List(ctx, f)
}

func (s *repoStore) Responses(ctx context.Context, f repo.ResponseFilter) ([]*repo.Response, error) {
	return s.db.Response.List(ctx, f)
}

func (s *repoStore) Feedback(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error) {
	return s.db.Feedback.List(ctx, f)
}
