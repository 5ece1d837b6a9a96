package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/myvoice_backend/cmd/http"
	reportcmd "github.com/Alijeyrad/myvoice_backend/cmd/report"
	surveycmd "github.com/Alijeyrad/myvoice_backend/cmd/survey"
	systemcmd "github.com/Alijeyrad/myvoice_backend/cmd/system"
	"github.com/Alijeyrad/myvoice_backend/pkg/logs"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "myvoice",
	Short: "MyVoice clinic visit registration and patient feedback backend.",
	Long: `MyVoice registers clinic visits sent in by SMS, follows each visit up
with a patient feedback survey and aggregates the answers into clinic and
region reports.`,
	SilenceUsage: true,
}

func Execute() {
	// Replaced once a command has read its config.
	slog.SetDefault(logs.Default())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(surveycmd.NewSurveyCommand())
	rootCmd.AddCommand(reportcmd.NewReportCommand())
}
