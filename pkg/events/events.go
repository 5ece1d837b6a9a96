// Package events publishes and consumes domain events over NATS.
//
// Subjects have the form <prefix>.<event>.<id>, and payloads are JSON.
// Trace context travels in the message headers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	VisitRegistered = "visit.registered"
	SurveyStart     = "survey.start"
	SurveyCompleted = "survey.completed"
)

// VisitRegisteredEvent is published after a valid registration.
type VisitRegisteredEvent struct {
	VisitID  uuid.UUID `json:"visit_id"`
	ClinicID uuid.UUID `json:"clinic_id"`
}

// SurveyStartEvent asks the survey platform to start a flow for a patient.
type SurveyStartEvent struct {
	VisitID uuid.UUID `json:"visit_id"`
	Mobile  string    `json:"mobile"`
	FlowID  int       `json:"flow_id"`
	Clinic  string    `json:"clinic"`
}

// SurveyCompletedEvent is published when the final question is answered.
type SurveyCompletedEvent struct {
	VisitID  uuid.UUID `json:"visit_id"`
	ClinicID uuid.UUID `json:"clinic_id"`
}

type Bus struct {
	nc     *nats.Conn
	prefix string
}

func NewBus(nc *nats.Conn, prefix string) *Bus {
	return &Bus{nc: nc, prefix: prefix}
}

// Subject returns the subject for event about id.
func (b *Bus) Subject(event string, id uuid.UUID) string {
	return fmt.Sprintf("%s.%s.%s", b.prefix, event, id)
}

// Wildcard matches event for every id.
func (b *Bus) Wildcard(event string) string {
	return fmt.Sprintf("%s.%s.*", b.prefix, event)
}

func (b *Bus) Publish(ctx context.Context, event string, id uuid.UUID, payload any) error {
	msg, err := newMsg(ctx, b.Subject(event, id), payload)
	if err != nil {
		return err
	}
	if err := b.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publishing %s: %w", msg.Subject, err)
	}
	return nil
}

func newMsg(ctx context.Context, subject string, payload any) (*nats.Msg, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return msg, nil
}

// decode restores the publisher's trace context and unmarshals the payload.
func decode[T any](msg *nats.Msg) (context.Context, T, error) {
	var v T
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(http.Header(msg.Header)))
	}
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return ctx, v, fmt.Errorf("decoding %s: %w", msg.Subject, err)
	}
	return ctx, v, nil
}

// Subscribe consumes event as part of queue group queue. Handler errors are
// logged; NATS core delivery is at most once.
func Subscribe[T any](b *Bus, event, queue string, log *slog.Logger, h func(context.Context, T) error) (*nats.Subscription, error) {
	subject := b.Wildcard(event)
	return b.nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		ctx, v, err := decode[T](msg)
		if err != nil {
			log.Warn("dropping malformed event", "subject", msg.Subject, "error", err)
			return
		}
		if err := h(ctx, v); err != nil {
			log.Error("event handler failed", "subject", msg.Subject, "error", err)
		}
	})
}
