package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	registrations metric.Int64Counter
	surveyStages  metric.Int64Counter
	welcomeSMS    metric.Int64Counter
	feedback      metric.Int64Counter
	exports       metric.Int64Counter
}

// NewMetrics registers the counters on mp, one meter per component.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := func(component string) metric.Meter { return mp.Meter(meterPrefix + component) }
	m := &Metrics{}
	var err error

	if m.registrations, err = meter("registration").Int64Counter("myvoice_registrations_total",
		metric.WithDescription("Registration SMS processed, by outcome")); err != nil {
		return nil, err
	}
	if m.surveyStages, err = meter("survey").Int64Counter("myvoice_survey_stage_total",
		metric.WithDescription("Visits reaching a survey lifecycle stage")); err != nil {
		return nil, err
	}
	if m.welcomeSMS, err = meter("survey").Int64Counter("myvoice_welcome_sms_total",
		metric.WithDescription("Welcome SMS attempts, by result")); err != nil {
		return nil, err
	}
	if m.feedback, err = meter("feedback").Int64Counter("myvoice_feedback_total",
		metric.WithDescription("Generic feedback messages stored")); err != nil {
		return nil, err
	}
	if m.exports, err = meter("report").Int64Counter("myvoice_report_exports_total",
		metric.WithDescription("Report exports uploaded")); err != nil {
		return nil, err
	}
	return m, nil
}

// Registration counts one parsed entry. outcome is "valid", "incomplete"
// or the failing field category.
func (m *Metrics) Registration(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) SurveyStage(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.surveyStages.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *Metrics) WelcomeSMS(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.welcomeSMS.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) Feedback(ctx context.Context) {
	if m == nil {
		return
	}
	m.feedback.Add(ctx, 1)
}

func (m *Metrics) Export(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.exports.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
