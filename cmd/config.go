package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure YouTrack and Azure DevOps connection settings",
	Long:  `Interactively set up the YouTrack base URL and token and the Azure DevOps organization, project, and personal access token. Settings are saved to ~/.yt2ado.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		// Load existing config for defaults
		existing, _ := config.Load(cfgFile)

		// YouTrack URL
		defaultYT := existing.YouTrack.BaseURL
		if defaultYT != "" {
			fmt.Printf("YouTrack base URL [%s]: ", defaultYT)
		} else {
			fmt.Print("YouTrack base URL (e.g., https://your-org.youtrack.cloud): ")
		}
		ytURL, _ := reader.ReadString('\n')
		ytURL = strings.TrimSpace(ytURL)
		if ytURL == "" {
			ytURL = defaultYT
		}

		// YouTrack token (masked, optional)
		fmt.Print("YouTrack token (input hidden, enter to skip for anonymous reads): ")
		ytTokenBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // newline after hidden input
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		ytToken := strings.TrimSpace(string(ytTokenBytes))
		if ytToken == "" {
			ytToken = existing.YouTrack.Token
		}

		// Azure DevOps organization URL
		defaultOrg := existing.AzureDevOps.OrganizationURL
		if defaultOrg != "" {
			fmt.Printf("Azure DevOps organization URL [%s]: ", defaultOrg)
		} else {
			fmt.Print("Azure DevOps organization URL (e.g., https://dev.azure.com/your-org): ")
		}
		orgURL, _ := reader.ReadString('\n')
		orgURL = strings.TrimSpace(orgURL)
		if orgURL == "" {
			orgURL = defaultOrg
		}

		// Azure DevOps project
		defaultProject := existing.AzureDevOps.Project
		if defaultProject != "" {
			fmt.Printf("Azure DevOps project [%s]: ", defaultProject)
		} else {
			fmt.Print("Azure DevOps project: ")
		}
		project, _ := reader.ReadString('\n')
		project = strings.TrimSpace(project)
		if project == "" {
			project = defaultProject
		}

		// Azure DevOps PAT (masked)
		fmt.Print("Azure DevOps personal access token (input hidden): ")
		patBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		pat := strings.TrimSpace(string(patBytes))
		if pat == "" {
			pat = existing.AzureDevOps.Token
		}

		cfg := existing
		cfg.YouTrack = config.YouTrack{BaseURL: ytURL, Token: ytToken}
		cfg.AzureDevOps = config.AzureDevOps{OrganizationURL: orgURL, Project: project, Token: pat}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}

		fmt.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
