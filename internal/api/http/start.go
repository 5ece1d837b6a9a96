package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/api/http/router"
	"github.com/Alijeyrad/myvoice_backend/internal/app"
)

func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer registers the listener hook, so something must ask for the app.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		app.Logger(),
	).Run()
}
