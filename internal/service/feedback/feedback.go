// Package feedback stores free-text messages that are not answers to a
// survey question, and curates which comments reach the dashboard.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	"github.com/Alijeyrad/myvoice_backend/pkg/phone"
	"github.com/Alijeyrad/myvoice_backend/pkg/reqctx"
)

// clinicLabel marks the value that names the clinic.
const clinicLabel = "Clinic"

// Value is one answered field of an inbound feedback flow.
type Value struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Label    string `json:"label"`
}

// Store is the persistence feedback needs.
type Store interface {
	ClinicByCode(ctx context.Context, code int) (*repo.Clinic, error)
	CreateFeedback(ctx context.Context, fb *repo.GenericFeedback) error
	ListFeedback(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error)
	SetFeedbackDisplay(ctx context.Context, id uuid.UUID, display bool) error
	SetResponseDisplay(ctx context.Context, id uuid.UUID, display bool) error
}

type Service interface {
	// Receive stores the feedback carried by values from sender.
	Receive(ctx context.Context, sender string, values []Value) (*repo.GenericFeedback, error)
	List(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error)
	SetDisplay(ctx context.Context, id uuid.UUID, display bool) error
	SetResponseDisplay(ctx context.Context, id uuid.UUID, display bool) error
}

type feedbackService struct {
	store   Store
	metrics *observability.Metrics
	log     *slog.Logger
	region  string
}

func New(store Store, metrics *observability.Metrics, log *slog.Logger, region string) Service {
	return &feedbackService{store: store, metrics: metrics, log: log, region: region}
}

// ---------------------------------------------------------------------------
// Intake
// ---------------------------------------------------------------------------

func (s *feedbackService) Receive(ctx context.Context, sender string, values []Value) (*repo.GenericFeedback, error) {
	local, _ := phone.Canonicalize(sender, s.region)
	if local == "" {
		return nil, ErrEmptySender
	}

	clinic, clinicText, message, err := s.extract(ctx, values)
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if clinic == nil && clinicText != "" {
		message = fmt.Sprintf("%s (%s)", message, clinicText)
	}

	fb := &repo.GenericFeedback{
		Sender:             local,
		Message:            message,
		DisplayOnDashboard: true,
	}
	if clinic != nil {
		fb.ClinicID = &clinic.ID
	}
	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("storing feedback: %w", err)
	}

	s.metrics.Feedback(ctx)
	reqctx.Logger(ctx, s.log).Info("feedback: received", "sender", local, "feedback_id", fb.ID, "clinic_matched", clinic != nil)
	return fb, nil
}

// extract picks the clinic and the message out of values. A Clinic value
// with a numeric category is looked up by code; anything else is kept as
// free text. The message is the first non-clinic value.
func (s *feedbackService) extract(ctx context.Context, values []Value) (*repo.Clinic, string, string, error) {
	var (
		clinic     *repo.Clinic
		clinicText string
		message    string
	)
	for _, v := range values {
		text := strings.TrimSpace(v.Value)
		if !strings.EqualFold(v.Label, clinicLabel) {
			if message == "" {
				message = text
			}
			continue
		}

		code, err := strconv.Atoi(strings.TrimSpace(v.Category))
		if err != nil {
			clinicText = text
			continue
		}
		c, err := s.store.ClinicByCode(ctx, code)
		switch {
		case repo.IsNotFound(err):
			clinicText = text
		case err != nil:
			return nil, "", "", fmt.Errorf("looking up clinic: %w", err)
		default:
			clinic = c
		}
	}
	return clinic, clinicText, message, nil
}

// ---------------------------------------------------------------------------
// Curation
// ---------------------------------------------------------------------------

func (s *feedbackService) List(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error) {
	return s.store.ListFeedback(ctx, f)
}

func (s *feedbackService) SetDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	return notFound(s.store.SetFeedbackDisplay(ctx, id, display))
}

func (s *feedbackService) SetResponseDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	return notFound(s.store.SetResponseDisplay(ctx, id, display))
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// Store adapter
// ---------------------------------------------------------------------------

type repoStore struct {
	db *repo.Client
}

func NewStore(db *repo.Client) Store {
	return &repoStore{db: db}
}

func (s *repoStore) ClinicByCode(ctx context.Context, code int) (*repo.Clinic, error) {
	return s.db.Clinic.ByCode(ctx, code)
}

func (s *repoStore) CreateFeedback(ctx context.Context, fb *repo.GenericFeedback) error {
	return s.db.Feedback.Create(ctx, fb)
}

func (s *repoStore) ListFeedback(ctx context.Context, f repo.FeedbackFilter) ([]*repo.GenericFeedback, error) {
	return s.db.Feedback.List(ctx, f)
}

func (s *repoStore) SetFeedbackDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	return s.db.Feedback.SetDisplay(ctx, id, display)
}

func (s *repoStore) SetResponseDisplay(ctx context.Context, id uuid.UUID, display bool) error {
	return s.db.Response.SetDisplay(ctx, id, display)
}
