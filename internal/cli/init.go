package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stayflow-tech/stayflow/internal/config"
)

var (
	initForce  bool
	initFormat string
)

// initCmd sets up a StayFlow workspace in the current directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a StayFlow workspace",
	Long: `Initialize creates a config file with sensible defaults and the
guest store directory. Run it once per workspace before registering
guests.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initFormat, "format", "yaml", "config file format (yaml, json)")
}

// runInit implements the init command.
func runInit(cmd *cobra.Command, args []string) error {
	// Check for existing config
	existingConfig, _ := config.FindConfigFile(".")
	if existingConfig != "" && !initForce {
		printWarning(fmt.Sprintf("Config file already exists: %s", existingConfig))
		printInfo("Use --force to overwrite")
		return nil
	}

	printTitle("StayFlow Setup")
	fmt.Println()

	configFile := ".stayflow.yaml"
	if initFormat == "json" {
		configFile = ".stayflow.json"
	}

	defaults := config.DefaultConfig()

	if err := config.WriteConfig(defaults, configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	printSuccess(fmt.Sprintf("Created %s", configFile))

	if defaults.Storage.Backend == "file" {
		if err := os.MkdirAll(defaults.Storage.Dir, 0750); err != nil {
			return fmt.Errorf("failed to create guest store: %w", err)
		}
		printSuccess(fmt.Sprintf("Created guest store at %s", defaults.Storage.Dir))
	}

	fmt.Println()
	printTitle("Next Steps")
	fmt.Println()
	fmt.Println("  1. Review and customize your config file")
	fmt.Println("  2. Register your first guest:")
	fmt.Println()
	printSubtle("     stayflow guest register --name \"Jane Doe\" --phone \"+1 555 0100\"")
	fmt.Println()
	fmt.Println("  3. Track fulfillment events with 'stayflow track'")
	fmt.Println()

	return nil
}
