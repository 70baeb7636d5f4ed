package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/migrate"
)

var issueMapping string

var issueCmd = &cobra.Command{
	Use:   "issue <issue-id>",
	Short: "Migrate a single YouTrack issue",
	Long: `Migrates one YouTrack issue to a new Azure DevOps work item, including its
custom fields (per the optional mapping rules file), comments, and
attachments. Prints the id of the created work item.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		issueID := strings.ToUpper(args[0])

		migrator, err := newMigrator(issueMapping)
		if err != nil {
			return err
		}

		workItemID, err := migrator.MigrateIssue(issueID)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Migrated %s to work item %d\n", issueID, workItemID)
		return nil
	},
}

// newMigrator builds a Migrator from the loaded config and an optional
// mapping rules file.
func newMigrator(mappingFile string) (*migrate.Migrator, error) {
	yt, ado := newClients()

	var mapper migrate.FieldMapper = migrate.NopMapper
	if mappingFile != "" {
		rules, err := migrate.LoadRules(mappingFile)
		if err != nil {
			return nil, err
		}
		mapper = migrate.NewRuleMapper(rules)
	}

	return &migrate.Migrator{
		Source:        yt,
		Target:        ado,
		Mapper:        mapper,
		ItemType:      appConfig.Migration.WorkItemType,
		SourceIDField: appConfig.Migration.SourceIDField,
	}, nil
}

func init() {
	issueCmd.Flags().StringVarP(&issueMapping, "mapping", "m", "", "YAML file with custom-field mapping rules")
	rootCmd.AddCommand(issueCmd)
}
