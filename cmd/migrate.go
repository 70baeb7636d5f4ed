package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/migrate"
)

var (
	migrateMapping  string
	migrateLimit    int
	migrateAttempts int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <project-key>",
	Short: "Migrate every issue in a YouTrack project",
	Long: `Lists all issues in a YouTrack project and migrates them one at a time, in
the order the service reports them. Transient Azure DevOps failures (empty
or undecodable responses) are retried per issue with backoff; any other
failure aborts the run.

The run is not resumable: nothing records which issues already succeeded.
Configure migration.source_id_field to make re-runs skip migrated issues
instead of duplicating them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		projectKey := strings.ToUpper(args[0])

		migrator, err := newMigrator(migrateMapping)
		if err != nil {
			return err
		}

		limit := migrateLimit
		if limit == 0 {
			limit = appConfig.Migration.IssueLimit
		}
		attempts := migrateAttempts
		if attempts == 0 {
			attempts = appConfig.Migration.RetryAttempts
		}

		driver := &migrate.Driver{
			Migrator: migrator,
			Limit:    limit,
			Attempts: attempts,
		}

		if err := driver.MigrateProject(projectKey); err != nil {
			return fmt.Errorf("migrating project %s: %w", projectKey, err)
		}

		fmt.Fprintf(os.Stderr, "Project %s migrated\n", projectKey)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateMapping, "mapping", "m", "", "YAML file with custom-field mapping rules")
	migrateCmd.Flags().IntVar(&migrateLimit, "limit", 0, "max issues to list (default 10000)")
	migrateCmd.Flags().IntVar(&migrateAttempts, "attempts", 0, "retry attempts per issue on transient failures (default 8)")
	rootCmd.AddCommand(migrateCmd)
}
