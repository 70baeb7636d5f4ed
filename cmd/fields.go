package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <issue-id>",
	Short: "Print an issue's custom-field values as YAML",
	Long: `Fetches a YouTrack issue and prints its custom-field map. Use this to see
which fields and value attributes exist before writing a mapping rules file
for 'yt2ado issue' or 'yt2ado migrate'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		issueID := strings.ToUpper(args[0])

		yt, _ := newClients()
		issue, err := yt.GetIssue(issueID)
		if err != nil {
			return fmt.Errorf("fetching issue %s: %w", issueID, err)
		}

		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		if err := enc.Encode(issue.CustomFieldMap()); err != nil {
			return fmt.Errorf("encoding fields: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
