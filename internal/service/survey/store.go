package survey

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
)

type repoStore struct {
	db *repo.Client
}

func NewStore(db *repo.Client) Store {
	return &repoStore{db: db}
}

func (s *repoStore) Visit(ctx context.Context, id uuid.UUID) (*repo.Visit, error) {
	return s.db.Visit.Get(ctx, id)
}

func (s *repoStore) Clinic(ctx context.Context, id uuid.UUID) (*repo.Clinic, error) {
	return s.db.Clinic.Get(ctx, id)
}

func (s *repoStore) PendingWelcome(ctx context.Context, limit int) ([]*repo.Visit, error) {
	return s.db.Visit.PendingWelcome(ctx, limit)
}

func (s *repoStore) Due(ctx context.Context, now time.Time, limit int) ([]*repo.Visit, error) {
	return s.db.Visit.Due(ctx, now, limit)
}

func (s *repoStore) KnownSenders(ctx context.Context, numbers []string) (map[string]bool, error) {
	return s.db.Visit.KnownSenders(ctx, numbers)
}

func (s *repoStore) ClaimWelcome(ctx context.Context, id uuid.UUID, at time.Time, scheduledAt *time.Time) (bool, error) {
	return s.db.Visit.ClaimWelcome(ctx, id, at, scheduledAt)
}

func (s *repoStore) ReleaseWelcome(ctx context.Context, id uuid.UUID) error {
	return s.db.Visit.ReleaseWelcome(ctx, id)
}

func (s *repoStore) ClaimStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage, at time.Time) (bool, error) {
	return s.db.Visit.ClaimStage(ctx, id, stage, at)
}

func (s *repoStore) ReleaseStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage) error {
	return s.db.Visit.ReleaseStage(ctx, id, stage)
}

func (s *repoStore) MarkStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage, at time.Time) error {
	return s.db.Visit.MarkStage(ctx, id, stage, at)
}

func (s *repoStore) ActiveSurvey(ctx context.Context) (*repo.Survey, error) {
	return s.db.Survey.ActiveByRole(ctx, constants.SurveyRolePatientFeedback)
}

func (s *repoStore) Questions(ctx context.Context, surveyID uuid.UUID) ([]*repo.Question, error) {
	return s.db.Survey.Questions(ctx, surveyID)
}

func (s *repoStore) SaveResponse(ctx context.Context, resp *repo.Response) error {
	return s.db.Response.Save(ctx, resp)
}

// busStarter hands survey starts to the survey-platform bridge over NATS.
type busStarter struct {
	bus *events.Bus
}

func NewBusStarter(bus *events.Bus) Starter {
	return &busStarter{bus: bus}
}

func (b *busStarter) Start(ctx context.Context, ev events.SurveyStartEvent) error {
	return b.bus.Publish(ctx, events.SurveyStart, ev.VisitID, ev)
}
