package repo

import (
	"fmt"
	"time"
)

// VisitStage is a step of the feedback-survey lifecycle.
type VisitStage int

const (
	StageWelcomeSent VisitStage = iota
	StageSurveySent
	StageSurveyStarted
	StageSurveyCompleted
)

var stageColumns = [...]string{
	StageWelcomeSent:     "welcome_sent",
	StageSurveySent:      "survey_sent",
	StageSurveyStarted:   "survey_started",
	StageSurveyCompleted: "survey_completed",
}

func (s VisitStage) String() string {
	if s < 0 || int(s) >= len(stageColumns) {
		return fmt.Sprintf("VisitStage(%d)", int(s))
	}
	return stageColumns[s]
}

func (s VisitStage) column() string { return stageColumns[s] }

func (v *Visit) stageField(s VisitStage) **time.Time {
	switch s {
	case StageWelcomeSent:
		return &v.WelcomeSent
	case StageSurveySent:
		return &v.SurveySent
	case StageSurveyStarted:
		return &v.SurveyStarted
	default:
		return &v.SurveyCompleted
	}
}

// Reached reports whether the stage timestamp is set.
func (v *Visit) Reached(s VisitStage) bool {
	return *v.stageField(s) != nil
}

// Advance sets the stage timestamp. A stage is set at most once and only
// after the previous stage.
func (v *Visit) Advance(s VisitStage, at time.Time) error {
	if s < StageWelcomeSent || s > StageSurveyCompleted {
		return fmt.Errorf("%w: unknown stage %d", ErrStageOrder, int(s))
	}
	if v.Reached(s) {
		return fmt.Errorf("%w: %s already set", ErrStageOrder, s)
	}
	if s > StageWelcomeSent && !v.Reached(s-1) {
		return fmt.Errorf("%w: %s before %s", ErrStageOrder, s, s-1)
	}
	*v.stageField(s) = &at
	return nil
}
