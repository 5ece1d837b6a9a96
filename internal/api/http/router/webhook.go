package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/myvoice_backend/internal/api/http/handler"
)

func (r *Router) registerWebhookRoutes(
	api fiber.Router,
	rh *handler.RegistrationHandler,
	fh *handler.FeedbackHandler,
	sh *handler.SurveyHandler,
	webhookToken fiber.Handler,
) {
	hooks := api.Group("/webhooks", webhookToken)

	hooks.Post("/registrations", rh.Receive)
	hooks.Post("/feedback", fh.Receive)
	hooks.Post("/survey/responses", sh.RecordResponse)
}
