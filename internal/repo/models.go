package repo

import (
	"time"

	"github.com/google/uuid"
)

// ErrorType is the field category of a failed registration.
type ErrorType string

const (
	ErrorTypeClinic  ErrorType = "clinic"
	ErrorTypeMobile  ErrorType = "mobile"
	ErrorTypeSerial  ErrorType = "serial"
	ErrorTypeService ErrorType = "service"
)

type QuestionType string

const (
	QuestionOpenEnded      QuestionType = "open-ended"
	QuestionMultipleChoice QuestionType = "multiple-choice"
)

// Designation marks how a multiple-choice question feeds the satisfaction
// score.
type Designation string

const (
	// DesignationPositive: the primary category is the satisfied answer.
	DesignationPositive Designation = "positive"
	// DesignationNegative: the last category is the dissatisfied answer.
	DesignationNegative Designation = "negative"
	DesignationNeutral  Designation = "neutral"
)

type RegionType string

const (
	RegionCountry RegionType = "country"
	RegionState   RegionType = "state"
	RegionLGA     RegionType = "lga"
)

type Region struct {
	ID            uuid.UUID  `sql:"id" json:"id"`
	Name          string     `sql:"name" json:"name"`
	AlternateName string     `sql:"alternate_name" json:"alternate_name"`
	Type          RegionType `sql:"type" json:"type"`
	ExternalID    int        `sql:"external_id" json:"external_id"`
}

type Clinic struct {
	ID         uuid.UUID `sql:"id" json:"id"`
	Name       string    `sql:"name" json:"name"`
	Slug       string    `sql:"slug" json:"slug"`
	Code       int       `sql:"code" json:"code"`
	Town       string    `sql:"town" json:"town"`
	Ward       string    `sql:"ward" json:"ward"`
	LGA        string    `sql:"lga" json:"lga"`
	Category   string    `sql:"category" json:"category"`
	YearOpened string    `sql:"year_opened" json:"year_opened"`
	CreatedAt  time.Time `sql:"created_at" json:"created_at"`
	UpdatedAt  time.Time `sql:"updated_at" json:"updated_at"`
}

type Service struct {
	ID   uuid.UUID `sql:"id" json:"id"`
	Name string    `sql:"name" json:"name"`
	Slug string    `sql:"slug" json:"slug"`
	Code int       `sql:"code" json:"code"`
}

type Patient struct {
	ID        uuid.UUID `sql:"id" json:"id"`
	ClinicID  uuid.UUID `sql:"clinic_id" json:"clinic_id"`
	Serial    int       `sql:"serial" json:"serial"`
	Mobile    string    `sql:"mobile" json:"mobile"`
	Name      string    `sql:"name" json:"name"`
	CreatedAt time.Time `sql:"created_at" json:"created_at"`
	UpdatedAt time.Time `sql:"updated_at" json:"updated_at"`
}

// Visit is read joined with its patient, so ClinicID, Mobile and Serial
// are always populated.
type Visit struct {
	ID                uuid.UUID  `sql:"id" json:"id"`
	PatientID         uuid.UUID  `sql:"patient_id" json:"patient_id"`
	ServiceID         *uuid.UUID `sql:"service_id" json:"service_id,omitempty"`
	Sender            string     `sql:"sender" json:"sender"`
	VisitTime         time.Time  `sql:"visit_time" json:"visit_time"`
	WelcomeSent       *time.Time `sql:"welcome_sent" json:"welcome_sent,omitempty"`
	SurveyScheduledAt *time.Time `sql:"survey_scheduled_at" json:"survey_scheduled_at,omitempty"`
	SurveySent        *time.Time `sql:"survey_sent" json:"survey_sent,omitempty"`
	SurveyStarted     *time.Time `sql:"survey_started" json:"survey_started,omitempty"`
	SurveyCompleted   *time.Time `sql:"survey_completed" json:"survey_completed,omitempty"`

	ClinicID uuid.UUID `sql:"clinic_id" json:"clinic_id"`
	Mobile   string    `sql:"mobile" json:"mobile"`
	Serial   int       `sql:"serial" json:"serial"`
}

type RegistrationError struct {
	ID        uuid.UUID `sql:"id"`
	Sender    string    `sql:"sender"`
	ErrorType ErrorType `sql:"error_type"`
	CreatedAt time.Time `sql:"created_at"`
	UpdatedAt time.Time `sql:"updated_at"`
}

type Survey struct {
	ID     uuid.UUID `sql:"id" json:"id"`
	FlowID int       `sql:"flow_id" json:"flow_id"`
	Name   string    `sql:"name" json:"name"`
	Active bool      `sql:"active" json:"active"`
	Role   string    `sql:"role" json:"role"`
}

type Question struct {
	ID           uuid.UUID    `sql:"id" json:"id"`
	SurveyID     uuid.UUID    `sql:"survey_id" json:"survey_id"`
	QuestionID   string       `sql:"question_id" json:"question_id"`
	Type         QuestionType `sql:"question_type" json:"question_type"`
	Label        string       `sql:"label" json:"label"`
	Categories   []string     `sql:"categories" json:"categories"`
	Text         string       `sql:"question" json:"question"`
	Designation  *Designation `sql:"designation" json:"designation,omitempty"`
	StatisticKey string       `sql:"statistic_key" json:"statistic_key,omitempty"`
	Position     int          `sql:"position" json:"position"`
}

// PrimaryAnswer is the first category, or "" for open-ended questions.
func (q *Question) PrimaryAnswer() string {
	if len(q.Categories) == 0 {
		return ""
	}
	return q.Categories[0]
}

// LastAnswer is the final category, or "".
func (q *Question) LastAnswer() string {
	if len(q.Categories) == 0 {
		return ""
	}
	return q.Categories[len(q.Categories)-1]
}

// IsSatisfactionRelevant reports whether answers count towards the
// satisfaction score.
func (q *Question) IsSatisfactionRelevant() bool {
	if q.Designation == nil || q.Type != QuestionMultipleChoice {
		return false
	}
	return *q.Designation == DesignationPositive || *q.Designation == DesignationNegative
}

// IsSatisfied reports whether answer is a satisfied answer under the
// question's designation. Non-relevant questions always report true.
func (q *Question) IsSatisfied(answer string) bool {
	if !q.IsSatisfactionRelevant() {
		return true
	}
	if *q.Designation == DesignationNegative {
		return answer != q.LastAnswer()
	}
	return answer == q.PrimaryAnswer()
}

// Response is read joined with its question label and type.
type Response struct {
	ID                 uuid.UUID  `sql:"id" json:"id"`
	QuestionID         uuid.UUID  `sql:"question_id" json:"question_id"`
	VisitID            *uuid.UUID `sql:"visit_id" json:"visit_id,omitempty"`
	ClinicID           *uuid.UUID `sql:"clinic_id" json:"clinic_id,omitempty"`
	ServiceID          *uuid.UUID `sql:"service_id" json:"service_id,omitempty"`
	Response           string     `sql:"response" json:"response"`
	Datetime           time.Time  `sql:"datetime" json:"datetime"`
	DisplayOnDashboard bool       `sql:"display_on_dashboard" json:"display_on_dashboard"`

	QuestionLabel string       `sql:"question_label" json:"question_label"`
	QuestionType  QuestionType `sql:"question_type" json:"question_type"`
}

type GenericFeedback struct {
	ID                 uuid.UUID  `sql:"id" json:"id"`
	Sender             string     `sql:"sender" json:"sender"`
	ClinicID           *uuid.UUID `sql:"clinic_id" json:"clinic_id,omitempty"`
	Message            string     `sql:"message" json:"message"`
	MessageDate        time.Time  `sql:"message_date" json:"message_date"`
	DisplayOnDashboard bool       `sql:"display_on_dashboard" json:"display_on_dashboard"`
}
