package registration

import (
	"context"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
)

type repoStore struct {
	db *repo.Client
}

// NewStore adapts the repo client to Store.
func NewStore(db *repo.Client) Store {
	return &repoStore{db: db}
}

func (s *repoStore) ClinicByCode(ctx context.Context, code int) (*repo.Clinic, error) {
	return s.db.Clinic.ByCode(ctx, code)
}

func (s *repoStore) ServiceByCode(ctx context.Context, code int) (*repo.Service, error) {
	return s.db.Service.ByCode(ctx, code)
}

func (s *repoStore) ErrorState(ctx context.Context, sender string) (*repo.ErrorType, error) {
	rec, err := s.db.RegistrationError.Get(ctx, sender)
	if repo.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec.ErrorType, nil
}

func (s *repoStore) SaveErrorState(ctx context.Context, sender string, t repo.ErrorType) error {
	return s.db.RegistrationError.Save(ctx, sender, t)
}

func (s *repoStore) ClearErrorState(ctx context.Context, sender string) error {
	return s.db.RegistrationError.Delete(ctx, sender)
}

func (s *repoStore) LogFailure(ctx context.Context, sender, errType, message string) error {
	return s.db.RegistrationError.Log(ctx, sender, errType, message)
}

func (s *repoStore) RegisterVisit(ctx context.Context, in repo.RegisterVisit) (*repo.Visit, error) {
	return s.db.RegisterVisit(ctx, in)
}
