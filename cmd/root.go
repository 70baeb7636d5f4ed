package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/juju/loggo/v2"
	"github.com/spf13/cobra"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/azuredevops"
	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/config"
	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/youtrack"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
	version   = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "yt2ado",
	Short: "One-shot migration of YouTrack issues to Azure DevOps Boards",
	Long: `Migrates issues from a YouTrack project to Azure DevOps Boards work items,
preserving title, description, custom fields, comments, and attachments.
Descriptions and comments carry provenance text crediting the original
reporter and timestamp and linking back to the source issue.

This is a one-time, one-directional copy: nothing is synced back, and unless
migration.source_id_field is configured, re-running a migration creates
duplicate work items.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Tokens often live in a local .env during a migration campaign.
		_ = godotenv.Load()

		level := "INFO"
		if verbose {
			level = "DEBUG"
		}
		return loggo.ConfigureLoggers("<root>=" + level)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.yt2ado.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig loads and validates configuration. Commands that talk to either
// tracker call this.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w\nRun 'yt2ado config' to set up credentials", err)
	}
	appConfig = cfg
	return nil
}

// newClients builds the two tracker clients from the loaded config.
func newClients() (*youtrack.Client, *azuredevops.Client) {
	yt := youtrack.NewClient(appConfig.YouTrack.BaseURL, appConfig.YouTrack.Token)
	ado := azuredevops.NewClient(appConfig.AzureDevOps.OrganizationURL,
		appConfig.AzureDevOps.Project, appConfig.AzureDevOps.Token)
	return yt, ado
}
