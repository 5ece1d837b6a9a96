package report

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/app"
	reportsvc "github.com/Alijeyrad/myvoice_backend/internal/service/report"
	"github.com/Alijeyrad/myvoice_backend/pkg/logs"
)

func NewExportCommand() *cobra.Command {
	var clinic string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a clinic's survey responses as CSV to object storage",
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

			var svc reportsvc.Service
			stop, err := app.Run(ctx, cfg, &svc)
			if err != nil {
				return err
			}
			defer func() { _ = stop(context.Background()) }()

			exp, err := svc.ExportClinic(ctx, clinic)
			if err != nil {
				return fmt.Errorf("failed to export clinic %q: %w", clinic, err)
			}
			fmt.Printf("Exported %d responses to %s\n%s\n", exp.Rows, exp.Key, exp.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&clinic, "clinic", "", "Clinic slug")
	_ = cmd.MarkFlagRequired("clinic")

	return cmd
}
