package app

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/service/feedback"
	"github.com/Alijeyrad/myvoice_backend/internal/service/registration"
	"github.com/Alijeyrad/myvoice_backend/internal/service/report"
	"github.com/Alijeyrad/myvoice_backend/internal/service/survey"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
	"github.com/Alijeyrad/myvoice_backend/pkg/email"
	"github.com/Alijeyrad/myvoice_backend/pkg/events"
	"github.com/Alijeyrad/myvoice_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/myvoice_backend/pkg/redis"
	s3pkg "github.com/Alijeyrad/myvoice_backend/pkg/s3"
	"github.com/Alijeyrad/myvoice_backend/pkg/sms"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideRegistrationService,
		ProvideFeedbackService,
		ProvideSurveyService,
		ProvideReportService,
	),
)

func ProvideRegistrationService(
	db *repo.Client,
	locker *redispkg.Locker,
	bus *events.Bus,
	metrics *observability.Metrics,
	log *slog.Logger,
	cfg *config.Config,
) registration.Service {
	return registration.New(
		registration.NewStore(db),
		locker,
		bus,
		metrics,
		log.With("service", "registration"),
		registration.Config{Region: cfg.Registration.DefaultRegion},
	)
}

func ProvideFeedbackService(db *repo.Client, metrics *observability.Metrics, log *slog.Logger, cfg *config.Config) feedback.Service {
	return feedback.New(feedback.NewStore(db), metrics, log.With("service", "feedback"), cfg.Registration.DefaultRegion)
}

func ProvideSurveyService(
	db *repo.Client,
	smsCli *sms.Client,
	bus *events.Bus,
	metrics *observability.Metrics,
	log *slog.Logger,
	cfg *config.Config,
) (survey.Service, error) {
	window, err := survey.WindowFromConfig(cfg.Survey)
	if err != nil {
		return nil, err
	}
	return survey.New(survey.Deps{
		Store:   survey.NewStore(db),
		Welcome: smsCli,
		Starter: survey.NewBusStarter(bus),
		Pub:     bus,
		Metrics: metrics,
		Log:     log.With("service", "survey"),
	}, window, cfg.Registration.DefaultRegion), nil
}

func ProvideReportService(
	db *repo.Client,
	objects *s3pkg.Client,
	mailer *email.Client,
	metrics *observability.Metrics,
	log *slog.Logger,
	cfg *config.Config,
) report.Service {
	deps := report.Deps{
		Store:   report.NewStore(db),
		Mailer:  mailer,
		Metrics: metrics,
		Log:     log.With("service", "report"),
	}
	if objects != nil {
		deps.Objects = objects
	}
	return report.New(deps, report.Config{
		ExportPrefix:     cfg.Report.ExportPrefix,
		DigestRecipients: cfg.Report.DigestRecipients,
		AppName:          constants.AppName,
	})
}
