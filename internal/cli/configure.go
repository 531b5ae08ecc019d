package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halim/toolbridge/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Run interactive configuration wizard",
	Long: `Run an interactive configuration wizard to set up Toolbridge.
The wizard will guide you through configuring the API key, listen port,
upstream server and plugins.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	wizard := config.NewWizard()

	cfg, err := wizard.Run()
	if err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	loader := config.NewLoader(cfgFile)
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("\nConfiguration saved to: %s\n", loader.GetConfigPath())
	fmt.Println("\nYou can now start the gateway with: toolbridge serve")

	return nil
}
