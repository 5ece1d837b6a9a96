package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/api/http/handler"
	"github.com/Alijeyrad/myvoice_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/service/feedback"
	"github.com/Alijeyrad/myvoice_backend/internal/service/registration"
	"github.com/Alijeyrad/myvoice_backend/internal/service/report"
	"github.com/Alijeyrad/myvoice_backend/internal/service/survey"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg             *config.Config
	Redis           *redis.Client `optional:"true"`
	DB              *repo.Client  `optional:"true"`
	RegistrationSvc registration.Service
	FeedbackSvc     feedback.Service
	SurveySvc       survey.Service
	ReportSvc       report.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	webhookToken := middleware.WebhookToken(r.p.Cfg.Webhook.Token)

	// 3. Initialize Handlers
	registrationH := handler.NewRegistrationHandler(r.p.RegistrationSvc)
	feedbackH := handler.NewFeedbackHandler(r.p.FeedbackSvc)
	surveyH := handler.NewSurveyHandler(r.p.SurveySvc)
	reportH := handler.NewReportHandler(r.p.ReportSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerWebhookRoutes(api, registrationH, feedbackH, surveyH, webhookToken)
	r.registerReportRoutes(api, reportH, webhookToken)
	r.registerFeedbackRoutes(api, feedbackH, webhookToken)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: r.ready,
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// ready reports whether the database and Redis answer within a second.
func (r *Router) ready(c fiber.Ctx) bool {
	ctx, cancel := context.WithTimeout(c.Context(), time.Second)
	defer cancel()

	if r.p.DB != nil {
		if err := r.p.DB.Ping(ctx); err != nil {
			return false
		}
	}
	if r.p.Redis != nil {
		if err := r.p.Redis.Ping(ctx).Err(); err != nil {
			return false
		}
	}
	return true
}
