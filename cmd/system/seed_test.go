package system

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/service/report"
)

func TestFeedbackQuestions_CoverReports(t *testing.T) {
	id := uuid.New()
	questions := feedbackQuestions(id)

	qs, err := report.NewQuestionSet(questions)
	if err != nil {
		t.Fatalf("NewQuestionSet() error = %v", err)
	}
	if qs.WaitTime() == nil {
		t.Fatal("wait time question missing")
	}

	seen := map[int]bool{}
	for _, q := range questions {
		if q.SurveyID != id {
			t.Errorf("%s: survey id not set", q.Label)
		}
		if seen[q.Position] {
			t.Errorf("duplicate position %d", q.Position)
		}
		seen[q.Position] = true
	}
}
