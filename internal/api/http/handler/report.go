package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/myvoice_backend/internal/service/report"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func mapReportError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, report.ErrClinicNotFound),
		errors.Is(err, report.ErrRegionNotFound),
		errors.Is(err, report.ErrServiceNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, report.ErrExportDisabled), errors.Is(err, report.ErrDigestDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		// Missing survey questions land here too: they are a setup fault,
		// not a client error.
		return internalError(c)
	}
}

type reportQuery struct {
	Service   string `query:"service"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

// parseQuery reads the shared report filters. end_date is inclusive.
func parseQuery(c fiber.Ctx) (report.Query, string) {
	var q reportQuery
	_ = c.Bind().Query(&q)

	out := report.Query{Service: q.Service}
	if q.StartDate != "" {
		t, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return out, "invalid start_date"
		}
		out.Start = &t
	}
	if q.EndDate != "" {
		t, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return out, "invalid end_date"
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		out.End = &t
	}
	if out.Start != nil && out.End != nil && out.End.Before(*out.Start) {
		return out, "end_date is before start_date"
	}
	return out, ""
}

func (h *ReportHandler) Clinic(c fiber.Ctx) error {
	q, problem := parseQuery(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	rep, err := h.svc.Clinic(c.Context(), c.Params("slug"), q)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, rep)
}

func (h *ReportHandler) Weekly(c fiber.Ctx) error {
	q, problem := parseQuery(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	rows, err := h.svc.Weekly(c.Context(), c.Params("slug"), q)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, rows)
}

type regionQuery struct {
	Day   int `query:"day"`
	Month int `query:"month"`
	Year  int `query:"year"`
}

// regionDay returns nil when no date is given, which selects all time.
func regionDay(c fiber.Ctx) (*time.Time, string) {
	var q regionQuery
	if err := c.Bind().Query(&q); err != nil {
		return nil, "invalid date"
	}
	if q.Day == 0 && q.Month == 0 && q.Year == 0 {
		return nil, ""
	}
	if q.Day < 1 || q.Day > 31 || q.Month < 1 || q.Month > 12 || q.Year < 1 {
		return nil, "day, month and year must all be given"
	}
	d := time.Date(q.Year, time.Month(q.Month), q.Day, 0, 0, 0, 0, time.UTC)
	if d.Day() != q.Day {
		return nil, "invalid date"
	}
	return &d, ""
}

func (h *ReportHandler) Region(c fiber.Ctx) error {
	day, problem := regionDay(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	rep, err := h.svc.Region(c.Context(), c.Params("name"), day)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, rep)
}

func (h *ReportHandler) Completion(c fiber.Ctx) error {
	q, problem := parseQuery(c)
	if problem != "" {
		return badRequest(c, problem)
	}
	rows, err := h.svc.Completion(c.Context(), q)
	if err != nil {
		return mapReportError(c, err)
	}
	return ok(c, rows)
}

func (h *ReportHandler) ExportClinic(c fiber.Ctx) error {
	exp, err := h.svc.ExportClinic(c.Context(), c.Params("slug"))
	if err != nil {
		return mapReportError(c, err)
	}
	return created(c, exp)
}
