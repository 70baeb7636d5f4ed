package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify connectivity and credentials for both trackers",
	Long:  `Checks that YouTrack is reachable (with the configured token or anonymously) and that the Azure DevOps organization, project, and token are valid. Run this before starting a migration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		yt, ado := newClients()

		if err := yt.CheckAuth(); err != nil {
			return fmt.Errorf("YouTrack check failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "YouTrack: OK")

		if err := ado.CheckAuth(); err != nil {
			return fmt.Errorf("Azure DevOps check failed: %w", err)
		}
		fmt.Fprintln(os.Stderr, "Azure DevOps: OK")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
