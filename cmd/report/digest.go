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

func NewDigestCommand() *cobra.Command {
	var (
		region string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Email the weekly region digest to the configured recipients",
		Long: `Email a region's report for the week containing --date (today when
omitted) to report.digest_recipients.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				day = d
			}

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

			if err := svc.SendRegionDigest(ctx, region, &day); err != nil {
				return fmt.Errorf("failed to send digest for %q: %w", region, err)
			}
			fmt.Printf("Digest for %s sent.\n", region)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Region (LGA) name")
	cmd.Flags().StringVar(&date, "date", "", "Any day of the reported week, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}
