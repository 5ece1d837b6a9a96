package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/myvoice_backend/internal/service/survey"
)

type SurveyHandler struct {
	svc survey.Service
}

func NewSurveyHandler(svc survey.Service) *SurveyHandler {
	return &SurveyHandler{svc: svc}
}

func mapSurveyError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, survey.ErrVisitNotFound), errors.Is(err, survey.ErrQuestionNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, survey.ErrEmptyResponse):
		return badRequest(c, err.Error())
	case errors.Is(err, survey.ErrNoActiveSurvey):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

func (h *SurveyHandler) RecordResponse(c fiber.Ctx) error {
	var req survey.ResponseInput
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.VisitID == uuid.Nil {
		return badRequest(c, "visit_id is required")
	}
	if req.QuestionLabel == "" {
		return badRequest(c, "question_label is required")
	}

	resp, err := h.svc.RecordResponse(c.Context(), req)
	if err != nil {
		return mapSurveyError(c, err)
	}
	return created(c, resp)
}
