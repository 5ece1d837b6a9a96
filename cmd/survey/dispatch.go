package survey

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/app"
	surveysvc "github.com/Alijeyrad/myvoice_backend/internal/service/survey"
	"github.com/Alijeyrad/myvoice_backend/pkg/logs"
)

func NewDispatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Welcome new visits and start every survey that is due",
		Long: `Run one pass of the survey worker: send welcome SMS to new visits,
schedule their surveys and start the ones whose time has come. Useful from
cron when the HTTP server's ticker is not running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			slog.SetDefault(logs.New(cfg))

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			var (
				svc surveysvc.Service
				log *slog.Logger
			)
			stop, err := app.Run(ctx, cfg, &svc, &log)
			if err != nil {
				return err
			}
			defer func() { _ = stop(context.Background()) }()

			scheduled, started := app.SurveyPass(ctx, svc, time.Now(), log)
			fmt.Printf("Scheduled %d new visits, started %d surveys.\n", scheduled, started)
			return nil
		},
	}

	return cmd
}
