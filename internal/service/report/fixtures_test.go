package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
)

var waitCategories = []string{"<1 hour", "1-2 hours", "2-4 hours", ">4 hours"}

func designation(d repo.Designation) *repo.Designation { return &d }

// testQuestions is the patient feedback survey used across tests.
func testQuestions() []*repo.Question {
	yesNo := []string{"Yes", "No"}
	mc := func(label string, pos int, d *repo.Designation, cats []string) *repo.Question {
		return &repo.Question{ID: uuid.New(), Label: label, Position: pos, Type: repo.QuestionMultipleChoice, Categories: cats, Designation: d}
	}
	return []*repo.Question{
		mc(LabelOpenFacility, 1, designation(repo.DesignationNeutral), yesNo),
		mc(LabelRespectfulStaff, 2, designation(repo.DesignationPositive), yesNo),
		mc(LabelCleanMaterials, 3, designation(repo.DesignationNeutral), yesNo),
		mc(LabelChargedFairly, 4, designation(repo.DesignationPositive), yesNo),
		mc(LabelWaitTime, 5, designation(repo.DesignationNegative), waitCategories),
		{ID: uuid.New(), Label: LabelGenericFeedback, Position: 6, Type: repo.QuestionOpenEnded},
	}
}

func questionByLabel(qs []*repo.Question, label string) *repo.Question {
	for _, q := range qs {
		if q.Label == label {
			return q
		}
	}
	return nil
}

type responseBuilder struct {
	questions []*repo.Question
	clinicID  uuid.UUID
	at        time.Time
}

func (b responseBuilder) answer(visit uuid.UUID, label, text string) *repo.Response {
	q := questionByLabel(b.questions, label)
	v, c := visit, b.clinicID
	return &repo.Response{
		ID:                 uuid.New(),
		QuestionID:         q.ID,
		VisitID:            &v,
		ClinicID:           &c,
		Response:           text,
		Datetime:           b.at,
		DisplayOnDashboard: true,
		QuestionLabel:      q.Label,
		QuestionType:       q.Type,
	}
}
