package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/util/stats"
)

// Labels of the questions every report is built on.
const (
	LabelOpenFacility    = "Open Facility"
	LabelRespectfulStaff = "Respectful Staff Treatment"
	LabelCleanMaterials  = "Clean Hospital Materials"
	LabelChargedFairly   = "Charged Fairly"
	LabelWaitTime        = "Wait Time"
	LabelGenericFeedback = "General Feedback"
	labelFeedback        = "Generic Feedback"
	labelParticipation   = "Participation"
	labelSatisfaction    = "Patient Satisfaction"
)

// indexLabels are reported as positive-answer percentages, in this order.
var indexLabels = []string{LabelOpenFacility, LabelRespectfulStaff, LabelCleanMaterials, LabelChargedFairly}

// RequiredLabels lists every question a report needs.
func RequiredLabels() []string {
	return append(slices.Clone(indexLabels), LabelWaitTime)
}

// QuestionSet is the validated feedback survey.
type QuestionSet struct {
	all     []*repo.Question
	byLabel map[string]*repo.Question
	byID    map[uuid.UUID]*repo.Question
	// index holds the four percentage questions in report order.
	index []*repo.Question
}

// NewQuestionSet fails with ErrMissingQuestion when a required label is
// absent.
func NewQuestionSet(questions []*repo.Question) (*QuestionSet, error) {
	qs := &QuestionSet{
		all:     questions,
		byLabel: lo.SliceToMap(questions, func(q *repo.Question) (string, *repo.Question) { return q.Label, q }),
		byID:    lo.SliceToMap(questions, func(q *repo.Question) (uuid.UUID, *repo.Question) { return q.ID, q }),
	}
	for _, label := range RequiredLabels() {
		if _, ok := qs.byLabel[label]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingQuestion, label)
		}
	}
	qs.index = lo.Map(indexLabels, func(l string, _ int) *repo.Question { return qs.byLabel[l] })
	return qs, nil
}

func (qs *QuestionSet) WaitTime() *repo.Question { return qs.byLabel[LabelWaitTime] }

// ---------------------------------------------------------------------------
// Rows
// ---------------------------------------------------------------------------

// questionRow is the four index percentages followed by the wait time mode.
// Questions without responses are NoData placeholders.
func (qs *QuestionSet) questionRow(responses []*repo.Response) []Value {
	row := lo.Map(QuestionIndices(qs.index, responses), func(ix Index, _ int) Value { return ix.Value() })
	return append(row, qs.waitTimeMode(responses))
}

func (qs *QuestionSet) waitTimeMode(responses []*repo.Response) Value {
	wt := qs.WaitTime()
	waits := answers(lo.Filter(responses, func(r *repo.Response, _ int) bool { return r.QuestionID == wt.ID }))
	mode, ok := ModalCategory(waits, wt.Categories)
	return Mode(wt.Label, mode, ok, len(waits))
}

func (qs *QuestionSet) satisfaction(responses []*repo.Response) Value {
	score, ok, total := SatisfactionScore(responses, qs.byID)
	return Percent(labelSatisfaction, score, ok, total)
}

func participation(visits []*repo.Visit) Value {
	rate, ok, total := ParticipationRate(visits)
	return Percent(labelParticipation, rate, ok, total)
}

// ServiceRow is the question breakdown of one service.
type ServiceRow struct {
	Service string  `json:"service"`
	Values  []Value `json:"values"`
}

// byService groups responses by service and question, ordered by service
// name. Responses without a service are left out.
func (qs *QuestionSet) byService(responses []*repo.Response, services map[uuid.UUID]*repo.Service) []ServiceRow {
	withService := lo.Filter(responses, func(r *repo.Response, _ int) bool { return r.ServiceID != nil })
	groups := GroupBy(withService, func(r *repo.Response) uuid.UUID { return *r.ServiceID })
	rows := lo.Map(groups, func(g Group[uuid.UUID, *repo.Response], _ int) ServiceRow {
		name := g.Key.String()
		if s, ok := services[g.Key]; ok {
			name = s.Name
		}
		return ServiceRow{Service: name, Values: qs.questionRow(g.Items)}
	})
	slices.SortStableFunc(rows, func(a, b ServiceRow) int { return cmp.Compare(a.Service, b.Service) })
	return rows
}

// ---------------------------------------------------------------------------
// Clinic report
// ---------------------------------------------------------------------------

// Comment is a free-text answer shown on the dashboard.
type Comment struct {
	Question string    `json:"question"`
	Datetime time.Time `json:"datetime"`
	Response string    `json:"response"`
}

type WeekRow struct {
	Bucket
	Values        []Value `json:"values"`
	Satisfaction  Value   `json:"satisfaction"`
	Participation Value   `json:"participation"`
	// Surveys counts answers to the first index question.
	Surveys int `json:"surveys"`
}

type ClinicReport struct {
	Clinic        *repo.Clinic `json:"clinic"`
	Start         *time.Time   `json:"start,omitempty"`
	End           *time.Time   `json:"end,omitempty"`
	Registered    int          `json:"registered"`
	Started       int          `json:"started"`
	Completed     int          `json:"completed"`
	Participation Value        `json:"participation"`
	Satisfaction  Value        `json:"satisfaction"`
	Questions     []Value      `json:"questions"`
	ByService     []ServiceRow `json:"by_service"`
	Comments      []Comment    `json:"comments"`
	Weekly        []WeekRow    `json:"weekly"`
}

// ClinicInput is everything a clinic report is computed from.
type ClinicInput struct {
	Clinic    *repo.Clinic
	Visits    []*repo.Visit
	Responses []*repo.Response
	Feedback  []*repo.GenericFeedback
	Services  map[uuid.UUID]*repo.Service
	Start     *time.Time
	End       *time.Time
	Now       time.Time
}

func (qs *QuestionSet) ComposeClinic(in ClinicInput) *ClinicReport {
	rep := &ClinicReport{
		Clinic:        in.Clinic,
		Start:         in.Start,
		End:           in.End,
		Registered:    len(in.Visits),
		Started:       lo.CountBy(in.Visits, func(v *repo.Visit) bool { return v.Reached(repo.StageSurveyStarted) }),
		Completed:     lo.CountBy(in.Visits, func(v *repo.Visit) bool { return v.Reached(repo.StageSurveyCompleted) }),
		Participation: participation(in.Visits),
		Satisfaction:  qs.satisfaction(in.Responses),
		Questions:     qs.questionRow(in.Responses),
		ByService:     qs.byService(in.Responses, in.Services),
		Comments:      qs.comments(in.Responses, in.Feedback),
	}
	if rep.Start == nil || rep.End == nil {
		rep.Start, rep.End = responseRange(in.Responses)
	}
	if rep.Start != nil && rep.End != nil {
		rep.Weekly = qs.ComposeWeekly(in.Visits, in.Responses, *rep.Start, *rep.End, in.Now)
	}
	return rep
}

// ComposeWeekly repeats the clinic breakdown for every week of
// WeeklyBuckets(start, end, now).
func (qs *QuestionSet) ComposeWeekly(visits []*repo.Visit, responses []*repo.Response, start, end, now time.Time) []WeekRow {
	var rows []WeekRow
	first := qs.index[0].ID
	for b := range WeeklyBuckets(start, end, now) {
		rs := lo.Filter(responses, func(r *repo.Response, _ int) bool { return b.Contains(r.Datetime) })
		vs := lo.Filter(visits, func(v *repo.Visit, _ int) bool { return b.Contains(v.VisitTime) })
		rows = append(rows, WeekRow{
			Bucket:        b,
			Values:        qs.questionRow(rs),
			Satisfaction:  qs.satisfaction(rs),
			Participation: participation(vs),
			Surveys:       lo.CountBy(rs, func(r *repo.Response) bool { return r.QuestionID == first }),
		})
	}
	return rows
}

// comments merges displayed open-ended answers and generic feedback,
// sorted by question label then time.
func (qs *QuestionSet) comments(responses []*repo.Response, feedback []*repo.GenericFeedback) []Comment {
	var out []Comment
	for _, r := range responses {
		q := qs.byID[r.QuestionID]
		if q == nil || q.Type != repo.QuestionOpenEnded || !r.DisplayOnDashboard || !displayable(r.Response) {
			continue
		}
		out = append(out, Comment{Question: q.Label, Datetime: r.Datetime, Response: r.Response})
	}
	for _, fb := range feedback {
		if !fb.DisplayOnDashboard || !displayable(fb.Message) {
			continue
		}
		out = append(out, Comment{Question: labelFeedback, Datetime: fb.MessageDate, Response: fb.Message})
	}
	slices.SortStableFunc(out, func(a, b Comment) int {
		return cmp.Or(cmp.Compare(a.Question, b.Question), a.Datetime.Compare(b.Datetime))
	})
	return out
}

func displayable(text string) bool {
	return strings.TrimSpace(text) != ""
}

func responseRange(responses []*repo.Response) (*time.Time, *time.Time) {
	if len(responses) == 0 {
		return nil, nil
	}
	minR := lo.MinBy(responses, func(a, b *repo.Response) bool { return a.Datetime.Before(b.Datetime) })
	maxR := lo.MaxBy(responses, func(a, b *repo.Response) bool { return a.Datetime.After(b.Datetime) })
	return &minR.Datetime, &maxR.Datetime
}

// ---------------------------------------------------------------------------
// Region report
// ---------------------------------------------------------------------------

type ClinicRow struct {
	Clinic        string  `json:"clinic"`
	Slug          string  `json:"slug"`
	Participation Value   `json:"participation"`
	Satisfaction  Value   `json:"satisfaction"`
	Values        []Value `json:"values"`
}

type RegionReport struct {
	Region   *repo.Region `json:"region"`
	Start    *time.Time   `json:"start,omitempty"`
	End      *time.Time   `json:"end,omitempty"`
	Clinics  []ClinicRow  `json:"clinics"`
	Services []ServiceRow `json:"services"`
}

type RegionInput struct {
	Region *repo.Region
	// Clinics are listed in the report in this order.
	Clinics   []*repo.Clinic
	Visits    []*repo.Visit
	Responses []*repo.Response
	Services  map[uuid.UUID]*repo.Service
	Start     *time.Time
	End       *time.Time
}

// ComposeRegion lists every clinic, with NoData cells for clinics that have
// no responses.
func (qs *QuestionSet) ComposeRegion(in RegionInput) *RegionReport {
	withClinic := lo.Filter(in.Responses, func(r *repo.Response, _ int) bool { return r.ClinicID != nil })
	responses := byKey(GroupBy(withClinic, func(r *repo.Response) uuid.UUID { return *r.ClinicID }))
	visits := byKey(GroupBy(in.Visits, func(v *repo.Visit) uuid.UUID { return v.ClinicID }))

	rep := &RegionReport{
		Region:   in.Region,
		Start:    in.Start,
		End:      in.End,
		Services: qs.byService(in.Responses, in.Services),
	}
	if rep.Start == nil || rep.End == nil {
		rep.Start, rep.End = responseRange(in.Responses)
	}
	for _, c := range in.Clinics {
		rs := responses[c.ID]
		rep.Clinics = append(rep.Clinics, ClinicRow{
			Clinic:        c.Name,
			Slug:          c.Slug,
			Participation: participation(visits[c.ID]),
			Satisfaction:  qs.satisfaction(rs),
			Values:        qs.questionRow(rs),
		})
	}
	return rep
}

// ---------------------------------------------------------------------------
// Completion table
// ---------------------------------------------------------------------------

// TotalRow names the summary row of a completion table.
const TotalRow = "Total"

type CompletionRow struct {
	ClinicID   *uuid.UUID `json:"clinic_id,omitempty"`
	Clinic     string     `json:"clinic"`
	Registered int        `json:"registered"`
	Triggered  int        `json:"triggered"`
	Started    int        `json:"started"`
	Completed  int        `json:"completed"`
	// StartedPct and CompletedPct are relative to Triggered.
	StartedPct   Value `json:"started_pct"`
	CompletedPct Value `json:"completed_pct"`
}

// ComposeCompletion builds one row per clinic, in clinic order, and a final
// Total row.
func ComposeCompletion(clinics []*repo.Clinic, visits []*repo.Visit) []CompletionRow {
	byClinic := byKey(GroupBy(visits, func(v *repo.Visit) uuid.UUID { return v.ClinicID }))
	rows := make([]CompletionRow, 0, len(clinics)+1)
	for _, c := range clinics {
		id := c.ID
		rows = append(rows, completionRow(&id, c.Name, byClinic[c.ID]))
	}
	return append(rows, completionRow(nil, TotalRow, visits))
}

func completionRow(id *uuid.UUID, name string, visits []*repo.Visit) CompletionRow {
	count := func(s repo.VisitStage) int {
		return lo.CountBy(visits, func(v *repo.Visit) bool { return v.Reached(s) })
	}
	row := CompletionRow{
		ClinicID:   id,
		Clinic:     name,
		Registered: len(visits),
		Triggered:  count(repo.StageSurveySent),
		Started:    count(repo.StageSurveyStarted),
		Completed:  count(repo.StageSurveyCompleted),
	}
	pct, ok := stats.Percentage(row.Started, row.Triggered, 0)
	row.StartedPct = Percent("started", pct, ok, row.Triggered)
	pct, ok = stats.Percentage(row.Completed, row.Triggered, 0)
	row.CompletedPct = Percent("completed", pct, ok, row.Triggered)
	return row
}
