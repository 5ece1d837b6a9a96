package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/myvoice_backend/internal/service/registration"
)

type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// inboundSMS is what the SMS gateway posts, as form fields or JSON.
type inboundSMS struct {
	Text  string `json:"text" form:"text"`
	Phone string `json:"phone" form:"phone"`
}

func mapRegistrationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registration.ErrEmptySender):
		return badRequest(c, err.Error())
	case errors.Is(err, registration.ErrBusy):
		return tooManyRequests(c, err.Error())
	default:
		return internalError(c)
	}
}

// Receive answers the gateway with the reply text to send back to the
// sender.
func (h *RegistrationHandler) Receive(c fiber.Ctx) error {
	var req inboundSMS
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return badRequest(c, "phone is required")
	}

	res, err := h.svc.Register(c.Context(), req.Text, req.Phone)
	if err != nil {
		return mapRegistrationError(c, err)
	}
	return c.JSON(fiber.Map{"reply": res.Reply})
}
