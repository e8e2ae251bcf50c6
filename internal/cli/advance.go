package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

var advanceActor string

// advanceCmd moves a guest to the next journey stage.
var advanceCmd = &cobra.Command{
	Use:   "advance <guest-id> <stage>",
	Short: "Advance a guest to the next journey stage",
	Long: `Advance moves a guest forward one stage. Stages run awareness,
evaluation, booking, experiencing, feedback; skipping stages is rejected.
The stage being left is scored from its fulfillment events and archived.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdvance,
}

func init() {
	advanceCmd.Flags().StringVar(&advanceActor, "actor", "", "who initiated the transition")

	rootCmd.AddCommand(advanceCmd)
}

// AdvanceOutput is the JSON shape of the advance command result.
type AdvanceOutput struct {
	GuestID       string `json:"guest_id"`
	PreviousStage string `json:"previous_stage"`
	CurrentStage  string `json:"current_stage"`
	QualityScore  int    `json:"quality_score"`
}

func runAdvance(cmd *cobra.Command, args []string) error {
	target, err := guest.ParseStage(args[1])
	if err != nil {
		return err
	}

	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	out, err := app.advance.Execute(cmd.Context(), journey.AdvanceStageInput{
		GuestID: args[0],
		Target:  target,
		Actor:   advanceActor,
	})
	if err != nil {
		return fmt.Errorf("failed to advance guest: %w", err)
	}

	if outputJSON {
		return writeJSON(AdvanceOutput{
			GuestID:       out.GuestID,
			PreviousStage: string(out.PreviousStage),
			CurrentStage:  string(out.CurrentStage),
			QualityScore:  out.QualityScore,
		})
	}

	printSuccess(fmt.Sprintf("Guest %s advanced: %s → %s", out.GuestID, out.PreviousStage, out.CurrentStage))
	printSubtle(fmt.Sprintf("  %s scored %d/100", out.PreviousStage, out.QualityScore))
	return nil
}
