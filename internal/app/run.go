package app

import (
	"context"

	"go.uber.org/fx"

	"github.com/Alijeyrad/myvoice_backend/config"
)

// Run builds the infra and service graph for a one-shot command, fills
// targets and starts it. The returned func stops the graph.
func Run(ctx context.Context, cfg *config.Config, targets ...any) (func(context.Context) error, error) {
	fxApp := fx.New(
		fx.Supply(cfg),
		InfraModule,
		ServiceModule,
		fx.Populate(targets...),
		fx.NopLogger,
	)
	if err := fxApp.Err(); err != nil {
		return nil, err
	}
	if err := fxApp.Start(ctx); err != nil {
		return nil, err
	}
	return fxApp.Stop, nil
}
