package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/service/survey"
)

type fakeSurvey struct {
	handled, dispatched int
	handleErr           error
	calls               []string
}

func (f *fakeSurvey) HandleNewVisits(context.Context, time.Time) (int, error) {
	f.calls = append(f.calls, "handle")
	return f.handled, f.handleErr
}

func (f *fakeSurvey) DispatchDue(context.Context, time.Time) (int, error) {
	f.calls = append(f.calls, "dispatch")
	return f.dispatched, nil
}

func (f *fakeSurvey) RecordResponse(context.Context, survey.ResponseInput) (*repo.Response, error) {
	return nil, nil
}

func TestSurveyPass(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name          string
		svc           *fakeSurvey
		wantScheduled int
		wantStarted   int
	}{
		{"both stages", &fakeSurvey{handled: 2, dispatched: 3}, 2, 3},
		{"handle failure still dispatches", &fakeSurvey{handleErr: errors.New("db down"), dispatched: 1}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduled, started := SurveyPass(context.Background(), tt.svc, time.Now(), log)
			if scheduled != tt.wantScheduled || started != tt.wantStarted {
				t.Errorf("SurveyPass() = (%d, %d), want (%d, %d)", scheduled, started, tt.wantScheduled, tt.wantStarted)
			}
			if len(tt.svc.calls) != 2 || tt.svc.calls[0] != "handle" || tt.svc.calls[1] != "dispatch" {
				t.Errorf("calls = %v, want [handle dispatch]", tt.svc.calls)
			}
		})
	}
}
