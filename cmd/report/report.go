package report

import "github.com/spf13/cobra"

func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report export and digest commands",
	}

	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewDigestCommand())

	return cmd
}
