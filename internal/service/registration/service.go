package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	"github.com/Alijeyrad/myvoice_backend/pkg/phone"
	"github.com/Alijeyrad/myvoice_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

// Store is the persistence the registration flow needs.
type Store interface {
	Lookup
	ErrorState(ctx context.Context, sender string) (*repo.ErrorType, error)
	SaveErrorState(ctx context.Context, sender string, t repo.ErrorType) error
	ClearErrorState(ctx context.Context, sender string) error
	LogFailure(ctx context.Context, sender, errType, message string) error
	// RegisterVisit stores the visit and, when in.ClearErrorState is set,
	// clears the sender's error state atomically with it.
	RegisterVisit(ctx context.Context, in repo.RegisterVisit) (*repo.Visit, error)
}

// Locker serializes work per key.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Publisher interface {
	Publish(ctx context.Context, event string, id uuid.UUID, payload any) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Outcome labels for logs and metrics.
const (
	OutcomeValid      = "valid"
	OutcomeIncomplete = "incomplete"
)

// Result is the outcome of one registration SMS.
type Result struct {
	Reply string
	// Visit is set only for valid entries.
	Visit   *repo.Visit
	Outcome string
}

type Service interface {
	// Register processes one registration SMS from sender. Validation
	// problems are reported through Result.Reply; the error is reserved for
	// infrastructure failures.
	Register(ctx context.Context, text, sender string) (*Result, error)
}

type Config struct {
	// Region is the ISO country used to canonicalize sender numbers.
	Region string
}

type registrationService struct {
	store   Store
	locker  Locker
	pub     Publisher
	metrics *observability.Metrics
	log     *slog.Logger
	cfg     Config
	now     func() time.Time
}

func New(store Store, locker Locker, pub Publisher, metrics *observability.Metrics, log *slog.Logger, cfg Config) Service {
	return &registrationService{
		store:   store,
		locker:  locker,
		pub:     pub,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, text, sender string) (*Result, error) {
	local, err := phone.Canonicalize(sender, s.cfg.Region)
	if local == "" {
		return nil, ErrEmptySender
	}
	log := reqctx.Logger(ctx, s.log).With("sender", local)
	if err != nil {
		log.Warn("registration: sender not parseable, using raw digits")
	}

	entry, err := Parse(ctx, s.store, text)
	var perr *ParseError
	if err != nil && !errors.As(err, &perr) {
		return nil, err
	}

	if perr != nil && perr.Incomplete {
		s.metrics.Registration(ctx, OutcomeIncomplete)
		if err := s.store.LogFailure(ctx, local, OutcomeIncomplete, truncate(text)); err != nil {
			return nil, fmt.Errorf("logging incomplete entry: %w", err)
		}
		log.Info("registration: incomplete entry")
		return &Result{Reply: perr.Reply(), Outcome: OutcomeIncomplete}, nil
	}

	release, err := s.locker.Acquire(ctx, "registration:"+local)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	defer release()

	prev, err := s.store.ErrorState(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("reading error state: %w", err)
	}

	if perr != nil {
		return s.reject(ctx, log, local, text, prev, perr)
	}
	return s.accept(ctx, log, local, prev, entry)
}

func (s *registrationService) reject(ctx context.Context, log *slog.Logger, sender, text string, prev *repo.ErrorType, perr *ParseError) (*Result, error) {
	cat := perr.Category()
	if err := s.applyStep(ctx, sender, nextErrorStep(prev, &cat)); err != nil {
		return nil, err
	}
	if err := s.store.LogFailure(ctx, sender, string(cat.ErrorType()), truncate(text)); err != nil {
		return nil, fmt.Errorf("logging failed entry: %w", err)
	}

	outcome := string(cat.ErrorType())
	s.metrics.Registration(ctx, outcome)
	log.Info("registration: rejected", "fields", joinFields(perr.Fields), "repeat", prev != nil && *prev == cat.ErrorType())
	return &Result{Reply: perr.Reply(), Outcome: outcome}, nil
}

func (s *registrationService) accept(ctx context.Context, log *slog.Logger, sender string, prev *repo.ErrorType, entry *Entry) (*Result, error) {
	in := repo.RegisterVisit{
		ClinicID:  entry.Clinic.ID,
		Serial:    entry.Serial,
		Mobile:    entry.Mobile,
		ServiceID: &entry.Service.ID,
		Sender:    sender,
		VisitTime: s.now(),

		// Cleared in the visit's transaction.
		ClearErrorState: nextErrorStep(prev, nil).clear,
	}
	visit, err := s.store.RegisterVisit(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("registering visit: %w", err)
	}

	s.metrics.Registration(ctx, OutcomeValid)
	log.Info("registration: visit recorded", "visit_id", visit.ID, "clinic", entry.Clinic.Slug, "serial", entry.Serial)

	if s.pub != nil {
		ev := events.VisitRegisteredEvent{VisitID: visit.ID, ClinicID: entry.Clinic.ID}
		if err := s.pub.Publish(ctx, events.VisitRegistered, visit.ID, ev); err != nil {
			log.Warn("registration: publishing visit event failed", "visit_id", visit.ID, "error", err)
		}
	}

	return &Result{Reply: successReply(entry.Serial), Visit: visit, Outcome: OutcomeValid}, nil
}

func (s *registrationService) applyStep(ctx context.Context, sender string, step errorStep) error {
	switch {
	case step.save != nil:
		if err := s.store.SaveErrorState(ctx, sender, *step.save); err != nil {
			return fmt.Errorf("saving error state: %w", err)
		}
	case step.clear:
		if err := s.store.ClearErrorState(ctx, sender); err != nil {
			return fmt.Errorf("clearing error state: %w", err)
		}
	}
	return nil
}

// maxLogMessage matches the error log's message column.
const maxLogMessage = 160

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxLogMessage {
		return s
	}
	return string([]rune(s)[:maxLogMessage])
}
