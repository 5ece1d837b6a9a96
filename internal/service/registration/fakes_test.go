package registration

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
)

type logEntry struct {
	sender, errType, message string
}

type fakeStore struct {
	mu       sync.Mutex
	clinics  map[int]*repo.Clinic
	services map[int]*repo.Service
	state    map[string]repo.ErrorType
	logs     []logEntry
	visits   []repo.RegisterVisit
	lookups  int
	// clearErr fails every error-state clear.
	clearErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clinics: map[int]*repo.Clinic{
			1: {ID: uuid.New(), Name: "Wamba General", Slug: "wamba-general", Code: 1},
		},
		services: map[int]*repo.Service{
			5: {ID: uuid.New(), Name: "Antenatal", Slug: "antenatal", Code: 5},
		},
		state: map[string]repo.ErrorType{},
	}
}

func (f *fakeStore) ClinicByCode(_ context.Context, code int) (*repo.Clinic, error) {
	f.lookups++
	if c, ok := f.clinics[code]; ok {
		return c, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ServiceByCode(_ context.Context, code int) (*repo.Service, error) {
	f.lookups++
	if s, ok := f.services[code]; ok {
		return s, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) ErrorState(_ context.Context, sender string) (*repo.ErrorType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.state[sender]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeStore) SaveErrorState(_ context.Context, sender string, t repo.ErrorType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state[sender] = t
	return nil
}

func (f *fakeStore) ClearErrorState(_ context.Context, sender string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.state, sender)
	return nil
}

func (f *fakeStore) LogFailure(_ context.Context, sender, errType, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logEntry{sender, errType, message})
	return nil
}

// RegisterVisit applies the visit and the error-state clear together, or
// neither, like the transactional repo.
func (f *fakeStore) RegisterVisit(_ context.Context, in repo.RegisterVisit) (*repo.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.ClearErrorState {
		if f.clearErr != nil {
			return nil, f.clearErr
		}
		delete(f.state, in.Sender)
	}
	f.visits = append(f.visits, in)
	return &repo.Visit{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		ServiceID: in.ServiceID,
		Sender:    in.Sender,
		VisitTime: in.VisitTime,
		ClinicID:  in.ClinicID,
		Mobile:    in.Mobile,
		Serial:    in.Serial,
	}, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
	held     map[string]bool
	err      error
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, errors.New("lock held")
	}
	l.held[key] = true
	l.acquired = append(l.acquired, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released = append(l.released, key)
	}, nil
}

type published struct {
	event   string
	id      uuid.UUID
	payload any
}

type fakePublisher struct {
	events []published
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event string, id uuid.UUID, payload any) error {
	p.events = append(p.events, published{event, id, payload})
	return p.err
}
