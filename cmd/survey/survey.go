package survey

import "github.com/spf13/cobra"

func NewSurveyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Feedback survey commands",
	}

	cmd.AddCommand(NewDispatchCommand())

	return cmd
}
