package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
)

var (
	completeScore int
	completeActor string
)

// completeCmd completes a guest's journey.
var completeCmd = &cobra.Command{
	Use:   "complete <guest-id>",
	Short: "Complete a guest's journey",
	Long: `Complete archives the current journey and resets the guest to the
awareness stage for the next visit. The guest must be in the feedback
stage.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().IntVar(&completeScore, "score", 0, "final journey score 0-100")
	completeCmd.Flags().StringVar(&completeActor, "actor", "", "who initiated the completion")

	rootCmd.AddCommand(completeCmd)
}

// CompleteOutput is the JSON shape of the complete command result.
type CompleteOutput struct {
	GuestID          string `json:"guest_id"`
	CompletedJourney string `json:"completed_journey"`
	NewJourneyID     string `json:"new_journey_id"`
	JourneyCount     int    `json:"journey_count"`
}

func runComplete(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	out, err := app.complete.Execute(cmd.Context(), journey.CompleteJourneyInput{
		GuestID:    args[0],
		FinalScore: completeScore,
		Actor:      completeActor,
	})
	if err != nil {
		return fmt.Errorf("failed to complete journey: %w", err)
	}

	if outputJSON {
		return writeJSON(CompleteOutput{
			GuestID:          out.GuestID,
			CompletedJourney: out.CompletedJourney,
			NewJourneyID:     out.NewJourneyID,
			JourneyCount:     out.JourneyCount,
		})
	}

	printSuccess(fmt.Sprintf("Journey %s completed for guest %s", out.CompletedJourney, out.GuestID))
	printSubtle(fmt.Sprintf("  %d journeys completed, new journey %s started", out.JourneyCount, out.NewJourneyID))
	return nil
}
