package system

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/internal/service/report"
	"github.com/Alijeyrad/myvoice_backend/pkg/constants"
	"github.com/Alijeyrad/myvoice_backend/pkg/database"
)

var (
	yesNo        = []string{"Yes", "No"}
	waitTimes    = []string{"<1 hour", "1-2 hours", "2-4 hours", ">4 hours"}
	designations = map[string]repo.Designation{
		report.LabelOpenFacility:    repo.DesignationNeutral,
		report.LabelRespectfulStaff: repo.DesignationPositive,
		report.LabelCleanMaterials:  repo.DesignationNeutral,
		report.LabelChargedFairly:   repo.DesignationPositive,
		report.LabelWaitTime:        repo.DesignationNegative,
	}
)

// feedbackQuestions is the patient feedback flow, in asking order.
func feedbackQuestions(surveyID uuid.UUID) []*repo.Question {
	mc := func(pos int, label, text string, cats []string) *repo.Question {
		d := designations[label]
		return &repo.Question{
			SurveyID:    surveyID,
			QuestionID:  fmt.Sprintf("q%d", pos),
			Type:        repo.QuestionMultipleChoice,
			Label:       label,
			Categories:  cats,
			Text:        text,
			Designation: &d,
			Position:    pos,
		}
	}
	return []*repo.Question{
		mc(1, report.LabelOpenFacility, "Was the facility open when you arrived?", yesNo),
		mc(2, report.LabelRespectfulStaff, "Did the staff treat you with respect?", yesNo),
		mc(3, report.LabelCleanMaterials, "Were the hospital materials clean?", yesNo),
		mc(4, report.LabelChargedFairly, "Were you charged only the official fees?", yesNo),
		mc(5, report.LabelWaitTime, "How long did you wait to be seen?", waitTimes),
		{
			SurveyID:   surveyID,
			QuestionID: "q6",
			Type:       repo.QuestionOpenEnded,
			Label:      report.LabelGenericFeedback,
			Text:       "Is there anything else you would like to tell us?",
			Position:   6,
		},
	}
}

func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the patient feedback survey and its questions",
		Long: `Create the active patient feedback survey with the questions every
report is built on. Does nothing when an active survey already exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create ent client: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			if _, err := client.Survey.ActiveByRole(ctx, constants.SurveyRolePatientFeedback); err == nil {
				fmt.Println("Active feedback survey already present, nothing to seed.")
				return nil
			} else if !repo.IsNotFound(err) {
				return fmt.Errorf("failed to look up survey: %w", err)
			}

			err = client.WithTx(ctx, func(tx *repo.Client) error {
				s := &repo.Survey{
					FlowID: cfg.Survey.FlowID,
					Name:   "Patient Feedback",
					Active: true,
					Role:   constants.SurveyRolePatientFeedback,
				}
				if err := tx.Survey.Create(ctx, s); err != nil {
					return err
				}
				for _, q := range feedbackQuestions(s.ID) {
					if err := tx.Survey.CreateQuestion(ctx, q); err != nil {
						return fmt.Errorf("question %q: %w", q.Label, err)
					}
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to seed survey: %w", err)
			}

			fmt.Println("Feedback survey seeded successfully.")
			return nil
		},
	}

	return cmd
}
