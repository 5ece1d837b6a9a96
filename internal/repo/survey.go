package repo

import (
	"context"
	"encoding/json"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var (
	surveyColumns   = []string{"id", "flow_id", "name", "active", "role"}
	questionColumns = []string{
		"id", "survey_id", "question_id", "question_type", "label", "categories",
		"question", "designation", "statistic_key", "position",
	}
)

type SurveyRepo struct {
	conn dialect.ExecQuerier
}

// ActiveByRole returns the active survey playing role.
func (r *SurveyRepo) ActiveByRole(ctx context.Context, role string) (*Survey, error) {
	q := builder().Select(surveyColumns...).
		From(builder().Table(TableSurveys)).
		Where(sql.And(sql.EQ("role", role), sql.EQ("active", true))).
		Limit(1)
	return queryOne[Survey](ctx, r.conn, q)
}

func (r *SurveyRepo) Create(ctx context.Context, s *Survey) error {
	if s.ID == uuid.Nil {
		s.ID = newID()
	}
	q := builder().Insert(TableSurveys).
		Columns(surveyColumns...).
		Values(s.ID, s.FlowID, s.Name, s.Active, s.Role)
	_, err := exec(ctx, r.conn, q)
	return err
}

// Questions lists a survey's questions by position.
func (r *SurveyRepo) Questions(ctx context.Context, surveyID uuid.UUID) ([]*Question, error) {
	q := builder().Select(questionColumns...).
		From(builder().Table(TableQuestions)).
		Where(sql.EQ("survey_id", surveyID)).
		OrderBy("position")
	return queryAll[Question](ctx, r.conn, q)
}

func (r *SurveyRepo) CreateQuestion(ctx context.Context, qn *Question) error {
	if qn.ID == uuid.Nil {
		qn.ID = newID()
	}
	cats := qn.Categories
	if cats == nil {
		cats = []string{}
	}
	raw, err := json.Marshal(cats)
	if err != nil {
		return err
	}
	q := builder().Insert(TableQuestions).
		Columns(questionColumns...).
		Values(qn.ID, qn.SurveyID, qn.QuestionID, qn.Type, qn.Label, string(raw),
			qn.Text, qn.Designation, qn.StatisticKey, qn.Position)
	_, err = exec(ctx, r.conn, q)
	return err
}
