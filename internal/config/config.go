package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the connection settings for both trackers and the migration
// tuning knobs.
type Config struct {
	YouTrack    YouTrack    `yaml:"youtrack"    mapstructure:"youtrack"`
	AzureDevOps AzureDevOps `yaml:"azuredevops" mapstructure:"azuredevops"`
	Migration   Migration   `yaml:"migration"   mapstructure:"migration"`
}

// YouTrack holds source tracker settings. Token may be empty for instances
// that allow anonymous reads.
type YouTrack struct {
	BaseURL string `yaml:"base_url"        mapstructure:"base_url"`
	Token   string `yaml:"token,omitempty" mapstructure:"token"`
}

// AzureDevOps holds target tracker settings.
type AzureDevOps struct {
	OrganizationURL string `yaml:"organization_url" mapstructure:"organization_url"`
	Project         string `yaml:"project"          mapstructure:"project"`
	Token           string `yaml:"token"            mapstructure:"token"`
}

// Migration holds orchestration settings. Zero values fall back to the
// migrate package defaults.
type Migration struct {
	// WorkItemType is the work item type created per issue (default "Task").
	WorkItemType string `yaml:"work_item_type,omitempty" mapstructure:"work_item_type"`

	// SourceIDField names a work item field that records the source issue
	// id. When set, already-migrated issues are skipped on re-runs. When
	// empty, re-running creates duplicate work items.
	SourceIDField string `yaml:"source_id_field,omitempty" mapstructure:"source_id_field"`

	// IssueLimit bounds the single project listing request.
	IssueLimit int `yaml:"issue_limit,omitempty" mapstructure:"issue_limit"`

	// RetryAttempts bounds the per-issue retry on transient failures.
	RetryAttempts int `yaml:"retry_attempts,omitempty" mapstructure:"retry_attempts"`
}

// DefaultPath returns the default config file path (~/.yt2ado.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".yt2ado.yaml"
	}
	return filepath.Join(home, ".yt2ado.yaml")
}

// Load reads config from the YAML file and applies env var overrides.
// configPath may be empty to use the default path.
func Load(configPath string) (Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = DefaultPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Env var overrides
	v.BindEnv("youtrack.base_url", "YOUTRACK_URL")
	v.BindEnv("youtrack.token", "YOUTRACK_TOKEN")
	v.BindEnv("azuredevops.organization_url", "AZDO_ORG_URL")
	v.BindEnv("azuredevops.project", "AZDO_PROJECT")
	v.BindEnv("azuredevops.token", "AZDO_TOKEN")

	// Read the config file (ignore "not found" errors so env vars still work)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only ignore file-not-found; other errors (e.g. parse) are real
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required fields are present. The YouTrack token is
// deliberately optional: anonymous reads are enough on open instances.
func (c Config) Validate() error {
	if c.YouTrack.BaseURL == "" {
		return fmt.Errorf("YouTrack base URL is required (set in config file or YOUTRACK_URL env var)")
	}
	if c.AzureDevOps.OrganizationURL == "" {
		return fmt.Errorf("Azure DevOps organization URL is required (set in config file or AZDO_ORG_URL env var)")
	}
	if c.AzureDevOps.Project == "" {
		return fmt.Errorf("Azure DevOps project is required (set in config file or AZDO_PROJECT env var)")
	}
	if c.AzureDevOps.Token == "" {
		return fmt.Errorf("Azure DevOps personal access token is required (set in config file or AZDO_TOKEN env var)")
	}
	return nil
}

// Save writes the config to the given path (or default path if empty).
func Save(cfg Config, configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
