package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/myvoice_backend/internal/api/http/handler"
)

func (r *Router) registerFeedbackRoutes(
	api fiber.Router,
	h *handler.FeedbackHandler,
	webhookToken fiber.Handler,
) {
	api.Get("/feedback", webhookToken, h.List)
	api.Patch("/feedback/:id/display", webhookToken, h.SetDisplay)
	api.Patch("/responses/:id/display", webhookToken, h.SetResponseDisplay)
}
