package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/service/feedback"
)

type FeedbackHandler struct {
	svc feedback.Service
}

func NewFeedbackHandler(svc feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func mapFeedbackError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, feedback.ErrEmptySender), errors.Is(err, feedback.ErrEmptyMessage):
		return badRequest(c, err.Error())
	case errors.Is(err, feedback.ErrNotFound):
		return notFound(c, err.Error())
	default:
		return internalError(c)
	}
}

type feedbackRequest struct {
	Phone  string           `json:"phone"`
	Values []feedback.Value `json:"values"`
}

func (h *FeedbackHandler) Receive(c fiber.Ctx) error {
	var req feedbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	fb, err := h.svc.Receive(c.Context(), req.Phone, req.Values)
	if err != nil {
		return mapFeedbackError(c, err)
	}
	return created(c, fb)
}

type feedbackQuery struct {
	ClinicID  string `query:"clinic_id"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Displayed bool   `query:"displayed"`
}

// List returns generic feedback, oldest first. end_date is inclusive.
func (h *FeedbackHandler) List(c fiber.Ctx) error {
	var q feedbackQuery
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}

	f := repo.FeedbackFilter{DisplayedOnly: q.Displayed}
	if q.ClinicID != "" {
		id, err := uuid.Parse(q.ClinicID)
		if err != nil {
			return badRequest(c, "invalid clinic_id")
		}
		f.ClinicIDs = []uuid.UUID{id}
	}
	if q.StartDate != "" {
		t, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return badRequest(c, "invalid start_date")
		}
		f.Start = &t
	}
	if q.EndDate != "" {
		t, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return badRequest(c, "invalid end_date")
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		f.End = &t
	}

	items, err := h.svc.List(c.Context(), f)
	if err != nil {
		return mapFeedbackError(c, err)
	}
	return ok(c, items)
}

type displayRequest struct {
	Display *bool `json:"display"`
}

// bindDisplay returns a non-empty problem when the request is malformed.
func bindDisplay(c fiber.Ctx) (id uuid.UUID, display bool, problem string) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false, "invalid id"
	}
	var req displayRequest
	if err := c.Bind().JSON(&req); err != nil || req.Display == nil {
		return uuid.Nil, false, "display is required"
	}
	return id, *req.Display, ""
}

// SetDisplay hides or shows a generic feedback message on dashboards.
func (h *FeedbackHandler) SetDisplay(c fiber.Ctx) error {
	id, display, problem := bindDisplay(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	if err := h.svc.SetDisplay(c.Context(), id, display); err != nil {
		return mapFeedbackError(c, err)
	}
	return noContent(c)
}

// SetResponseDisplay hides or shows a survey answer on dashboards.
func (h *FeedbackHandler) SetResponseDisplay(c fiber.Ctx) error {
	id, display, problem := bindDisplay(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	if err := h.svc.SetResponseDisplay(c.Context(), id, display); err != nil {
		return mapFeedbackError(c, err)
	}
	return noContent(c)
}
