package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/domain/guest"
)

// statusCmd shows the state of the workspace.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace status",
	Long: `Status shows the active configuration and how guests are
distributed across the journey stages.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StatusOutput is the JSON shape of the status command result.
type StatusOutput struct {
	StorageBackend string         `json:"storage_backend"`
	StorageDir     string         `json:"storage_dir,omitempty"`
	EventPublisher string         `json:"event_publisher"`
	GuestCount     int            `json:"guest_count"`
	StageCounts    map[string]int `json:"stage_counts"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	total, err := app.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count guests: %w", err)
	}

	stageCounts := make(map[string]int, len(guest.AllStages()))
	for _, stage := range guest.AllStages() {
		guests, err := app.repo.FindByCurrentStage(ctx, stage)
		if err != nil {
			return fmt.Errorf("failed to query stage %s: %w", stage, err)
		}
		if len(guests) > 0 {
			stageCounts[string(stage)] = len(guests)
		}
	}

	if outputJSON {
		return writeJSON(StatusOutput{
			StorageBackend: cfg.Storage.Backend,
			StorageDir:     cfg.Storage.Dir,
			EventPublisher: cfg.Events.Publisher,
			GuestCount:     total,
			StageCounts:    stageCounts,
		})
	}

	printTitle("StayFlow Status")
	fmt.Println()
	fmt.Printf("  %s %s", styles.Bold.Render("Storage:"), cfg.Storage.Backend)
	if cfg.Storage.Backend == "file" {
		fmt.Printf(" (%s)", cfg.Storage.Dir)
	}
	fmt.Println()
	fmt.Printf("  %s %s\n", styles.Bold.Render("Events:"), cfg.Events.Publisher)
	fmt.Printf("  %s %d\n", styles.Bold.Render("Guests:"), total)

	if total > 0 {
		fmt.Println()
		printTitle("Stage Distribution")
		for _, stage := range guest.AllStages() {
			if n, ok := stageCounts[string(stage)]; ok {
				fmt.Printf("  %-14s %d\n", string(stage), n)
			}
		}
	}
	return nil
}
