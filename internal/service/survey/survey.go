// Package survey moves registered visits through the feedback-survey
// lifecycle: welcome message, scheduled dispatch, and answer recording.
package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	"github.com/Alijeyrad/myvoice_backend/pkg/phone"
	"github.com/Alijeyrad/myvoice_backend/pkg/reqctx"
)

// batchSize bounds the visits handled per pass.
const batchSize = 200

// ---------------------------------------------------------------------------
// Dependencies
// ---------------------------------------------------------------------------

type Store interface {
	Visit(ctx context.Context, id uuid.UUID) (*repo.Visit, error)
	Clinic(ctx context.Context, id uuid.UUID) (*repo.Clinic, error)
	PendingWelcome(ctx context.Context, limit int) ([]*repo.Visit, error)
	Due(ctx context.Context, now time.Time, limit int) ([]*repo.Visit, error)
	KnownSenders(ctx context.Context, numbers []string) (map[string]bool, error)
	// ClaimWelcome reports false when another pass already claimed the visit.
	ClaimWelcome(ctx context.Context, id uuid.UUID, at time.Time, scheduledAt *time.Time) (bool, error)
	ReleaseWelcome(ctx context.Context, id uuid.UUID) error
	ClaimStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage, at time.Time) (bool, error)
	ReleaseStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage) error
	MarkStage(ctx context.Context, id uuid.UUID, stage repo.VisitStage, at time.Time) error
	ActiveSurvey(ctx context.Context) (*repo.Survey, error)
	Questions(ctx context.Context, surveyID uuid.UUID) ([]*repo.Question, error)
	SaveResponse(ctx context.Context, resp *repo.Response) error
}

// WelcomeSender sends the post-visit welcome SMS.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, mobile, clinic string) error
}

// Starter starts a survey flow for a visit on the survey platform.
type Starter interface {
	Start(ctx context.Context, ev events.SurveyStartEvent) error
}

type Publisher interface {
	Publish(ctx context.Context, event string, id uuid.UUID, payload any) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// ResponseInput is one answer reported by the survey platform.
type ResponseInput struct {
	VisitID       uuid.UUID `json:"visit_id"`
	QuestionLabel string    `json:"question_label"`
	Response      string    `json:"response"`
	Time          time.Time `json:"time"`
}

type Service interface {
	// HandleNewVisits welcomes visits that have not been welcomed yet and
	// schedules their survey. It returns the number of visits scheduled.
	HandleNewVisits(ctx context.Context, now time.Time) (int, error)
	// DispatchDue starts every survey scheduled at or before now. A visit
	// whose start fails keeps survey_sent unset and is retried next pass.
	DispatchDue(ctx context.Context, now time.Time) (int, error)
	RecordResponse(ctx context.Context, in ResponseInput) (*repo.Response, error)
}

type Deps struct {
	Store   Store
	Welcome WelcomeSender
	Starter Starter
	Pub     Publisher
	Metrics *observability.Metrics
	Log     *slog.Logger
}

type surveyService struct {
	Deps
	window Window
	region string
}

func New(deps Deps, window Window, region string) Service {
	return &surveyService{Deps: deps, window: window, region: region}
}

// ---------------------------------------------------------------------------
// Welcome and scheduling
// ---------------------------------------------------------------------------

func (s *surveyService) HandleNewVisits(ctx context.Context, now time.Time) (int, error) {
	visits, err := s.Store.PendingWelcome(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("listing new visits: %w", err)
	}
	if len(visits) == 0 {
		return 0, nil
	}

	// Numbers that have registered visits belong to clinic staff.
	blocked, err := s.Store.KnownSenders(ctx, lo.Uniq(lo.Map(visits, func(v *repo.Visit, _ int) string { return v.Mobile })))
	if err != nil {
		return 0, fmt.Errorf("checking blocked numbers: %w", err)
	}

	log := reqctx.Logger(ctx, s.Log)
	scheduled := 0
	var errs []error
	for _, v := range visits {
		if v.Mobile == "" || !phone.IsMobile(v.Mobile, s.region) || blocked[v.Mobile] {
			log.Info("survey: skipping visit without reachable mobile", "visit_id", v.ID, "blocked", blocked[v.Mobile])
			if _, err := s.Store.ClaimWelcome(ctx, v.ID, now, nil); err != nil {
				errs = append(errs, fmt.Errorf("visit %s: %w", v.ID, err))
			}
			continue
		}

		clinic, err := s.Store.Clinic(ctx, v.ClinicID)
		if err != nil {
			errs = append(errs, fmt.Errorf("visit %s clinic: %w", v.ID, err))
			continue
		}

		// Claim before sending so concurrent passes never message twice.
		at := StartTime(now, s.window)
		claimed, err := s.Store.ClaimWelcome(ctx, v.ID, now, &at)
		if err != nil {
			errs = append(errs, fmt.Errorf("visit %s: %w", v.ID, err))
			continue
		}
		if !claimed {
			continue
		}
		if err := s.Welcome.SendWelcome(ctx, v.Mobile, clinic.Name); err != nil {
			s.Metrics.WelcomeSMS(ctx, "failed")
			log.Warn("survey: welcome sms failed", "visit_id", v.ID, "error", err)
			if err := s.Store.ReleaseWelcome(ctx, v.ID); err != nil {
				errs = append(errs, fmt.Errorf("visit %s release: %w", v.ID, err))
			}
			continue
		}
		s.Metrics.WelcomeSMS(ctx, "sent")
		s.Metrics.SurveyStage(ctx, repo.StageWelcomeSent.String())
		log.Info("survey: scheduled", "visit_id", v.ID, "at", at)
		scheduled++
	}
	return scheduled, errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func (s *surveyService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	visits, err := s.Store.Due(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("listing due surveys: %w", err)
	}
	if len(visits) == 0 {
		return 0, nil
	}

	survey, err := s.Store.ActiveSurvey(ctx)
	if repo.IsNotFound(err) {
		return 0, ErrNoActiveSurvey
	}
	if err != nil {
		return 0, err
	}

	log := reqctx.Logger(ctx, s.Log)
	sent := 0
	var errs []error
	for _, v := range visits {
		clinic, err := s.Store.Clinic(ctx, v.ClinicID)
		if err != nil {
			errs = append(errs, fmt.Errorf("visit %s clinic: %w", v.ID, err))
			continue
		}
		claimed, err := s.Store.ClaimStage(ctx, v.ID, repo.StageSurveySent, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("visit %s: %w", v.ID, err))
			continue
		}
		if !claimed {
			continue
		}
		ev := events.SurveyStartEvent{VisitID: v.ID, Mobile: v.Mobile, FlowID: survey.FlowID, Clinic: clinic.Name}
		if err := s.Starter.Start(ctx, ev); err != nil {
			log.Warn("survey: start failed, will retry", "visit_id", v.ID, "error", err)
			errs = append(errs, fmt.Errorf("visit %s start: %w", v.ID, err))
			if err := s.Store.ReleaseStage(ctx, v.ID, repo.StageSurveySent); err != nil {
				errs = append(errs, fmt.Errorf("visit %s release: %w", v.ID, err))
			}
			continue
		}
		s.Metrics.SurveyStage(ctx, repo.StageSurveySent.String())
		sent++
	}
	log.Info("survey: dispatch pass", "due", len(visits), "sent", sent)
	return sent, errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

func (s *surveyService) RecordResponse(ctx context.Context, in ResponseInput) (*repo.Response, error) {
	answer := strings.TrimSpace(in.Response)
	if answer == "" {
		return nil, ErrEmptyResponse
	}

	visit, err := s.Store.Visit(ctx, in.VisitID)
	if repo.IsNotFound(err) {
		return nil, ErrVisitNotFound
	}
	if err != nil {
		return nil, err
	}

	survey, err := s.Store.ActiveSurvey(ctx)
	if repo.IsNotFound(err) {
		return nil, ErrNoActiveSurvey
	}
	if err != nil {
		return nil, err
	}
	questions, err := s.Store.Questions(ctx, survey.ID)
	if err != nil {
		return nil, err
	}
	question, ok := lo.Find(questions, func(q *repo.Question) bool {
		return strings.EqualFold(q.Label, strings.TrimSpace(in.QuestionLabel))
	})
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrQuestionNotFound, in.QuestionLabel)
	}

	at := in.Time
	if at.IsZero() {
		at = time.Now()
	}
	resp := project(visit, question, answer, at)
	if err := s.Store.SaveResponse(ctx, resp); err != nil {
		return nil, fmt.Errorf("saving response: %w", err)
	}

	log := reqctx.Logger(ctx, s.Log).With("visit_id", visit.ID)
	if !visit.Reached(repo.StageSurveyStarted) {
		s.advance(ctx, log, visit.ID, repo.StageSurveyStarted, at)
		visit.SurveyStarted = &at
	}
	last := lo.MaxBy(questions, func(a, b *repo.Question) bool { return a.Position > b.Position })
	if last != nil && last.ID == question.ID && !visit.Reached(repo.StageSurveyCompleted) {
		if s.advance(ctx, log, visit.ID, repo.StageSurveyCompleted, at) && s.Pub != nil {
			ev := events.SurveyCompletedEvent{VisitID: visit.ID, ClinicID: visit.ClinicID}
			if err := s.Pub.Publish(ctx, events.SurveyCompleted, visit.ID, ev); err != nil {
				log.Warn("survey: publishing completion failed", "error", err)
			}
		}
	}
	return resp, nil
}

// project copies the visit's clinic and service onto the response. The
// copy is taken once, when the answer is stored.
func project(v *repo.Visit, q *repo.Question, answer string, at time.Time) *repo.Response {
	clinicID := v.ClinicID
	resp := &repo.Response{
		QuestionID:         q.ID,
		VisitID:            &v.ID,
		ClinicID:           &clinicID,
		Response:           answer,
		Datetime:           at,
		DisplayOnDashboard: true,
		QuestionLabel:      q.Label,
		QuestionType:       q.Type,
	}
	if v.ServiceID != nil {
		serviceID := *v.ServiceID
		resp.ServiceID = &serviceID
	}
	return resp
}

// advance records a lifecycle stage. Stage order problems are logged, not
// returned, so the answer itself is never lost.
func (s *surveyService) advance(ctx context.Context, log *slog.Logger, id uuid.UUID, stage repo.VisitStage, at time.Time) bool {
	if err := s.Store.MarkStage(ctx, id, stage, at); err != nil {
		log.Warn("survey: stage not recorded", "stage", stage.String(), "error", err)
		return false
	}
	s.Metrics.SurveyStage(ctx, stage.String())
	return true
}
