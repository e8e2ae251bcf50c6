package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/application/journey"
	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

var (
	prefsRoomTypes []string
	prefsPriceMin  float64
	prefsPriceMax  float64
	prefsRequests  []string
	prefsComms     string
	prefsPatterns  []string
)

// prefsCmd updates a guest's stay preferences.
var prefsCmd = &cobra.Command{
	Use:   "prefs <guest-id>",
	Short: "Update guest preferences",
	Long: `Prefs updates a guest's stay preferences and optionally appends
behavior patterns to their tags.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrefs,
}

func init() {
	prefsCmd.Flags().StringSliceVar(&prefsRoomTypes, "room-types", nil, "preferred room types")
	prefsCmd.Flags().Float64Var(&prefsPriceMin, "price-min", 0, "preferred price range lower bound")
	prefsCmd.Flags().Float64Var(&prefsPriceMax, "price-max", 0, "preferred price range upper bound")
	prefsCmd.Flags().StringSliceVar(&prefsRequests, "requests", nil, "special requests")
	prefsCmd.Flags().StringVar(&prefsComms, "comms", "", "communication preference (email, sms, phone)")
	prefsCmd.Flags().StringSliceVar(&prefsPatterns, "patterns", nil, "behavior patterns to append")

	guestCmd.AddCommand(prefsCmd)
}

func runPrefs(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	input := journey.UpdatePreferencesInput{
		GuestID:          args[0],
		BehaviorPatterns: prefsPatterns,
	}
	if len(prefsRoomTypes) > 0 || prefsPriceMin > 0 || prefsPriceMax > 0 || len(prefsRequests) > 0 || prefsComms != "" {
		input.Preferences = &guest.Preferences{
			RoomTypes:               prefsRoomTypes,
			PriceRange:              guest.PriceRange{Min: prefsPriceMin, Max: prefsPriceMax},
			SpecialRequests:         prefsRequests,
			CommunicationPreference: prefsComms,
		}
	}

	out, err := app.update.Execute(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	if outputJSON {
		return writeJSON(summaryOutput(out.Guest.Summary()))
	}

	printSuccess(fmt.Sprintf("Preferences updated for guest %s", out.GuestID))
	return nil
}
