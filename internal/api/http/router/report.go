package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/myvoice_backend/internal/api/http/handler"
)

func (r *Router) registerReportRoutes(
	api fiber.Router,
	h *handler.ReportHandler,
	webhookToken fiber.Handler,
) {
	reports := api.Group("/reports", webhookToken)

	reports.Get("/completion", h.Completion)
	reports.Get("/regions/:name", h.Region)

	clinics := reports.Group("/clinics/:slug")
	clinics.Get("/", h.Clinic)
	clinics.Get("/weekly", h.Weekly)
	clinics.Post("/export", h.ExportClinic)
}
