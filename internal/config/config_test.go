package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt2ado.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `youtrack:
  base_url: https://yt.example.com
  token: yt-token
azuredevops:
  organization_url: https://dev.azure.com/acme
  project: Boards
  token: pat
migration:
  work_item_type: Bug
  source_id_field: Custom.SourceIssueId
  issue_limit: 500
  retry_attempts: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.YouTrack.BaseURL != "https://yt.example.com" || cfg.YouTrack.Token != "yt-token" {
		t.Errorf("unexpected youtrack config: %+v", cfg.YouTrack)
	}
	if cfg.AzureDevOps.Project != "Boards" || cfg.AzureDevOps.Token != "pat" {
		t.Errorf("unexpected azuredevops config: %+v", cfg.AzureDevOps)
	}
	if cfg.Migration.WorkItemType != "Bug" || cfg.Migration.IssueLimit != 500 || cfg.Migration.RetryAttempts != 4 {
		t.Errorf("unexpected migration config: %+v", cfg.Migration)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `youtrack:
  base_url: https://yt.example.com
azuredevops:
  organization_url: https://dev.azure.com/acme
  project: Boards
  token: from-file
`)

	t.Setenv("AZDO_TOKEN", "from-env")
	t.Setenv("YOUTRACK_TOKEN", "yt-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AzureDevOps.Token != "from-env" {
		t.Errorf("env var should override file: got %q", cfg.AzureDevOps.Token)
	}
	if cfg.YouTrack.Token != "yt-env" {
		t.Errorf("env var should fill unset field: got %q", cfg.YouTrack.Token)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("YOUTRACK_URL", "https://yt.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("a missing config file should not error: %v", err)
	}
	if cfg.YouTrack.BaseURL != "https://yt.example.com" {
		t.Errorf("env vars should still apply: %+v", cfg.YouTrack)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		YouTrack:    YouTrack{BaseURL: "https://yt.example.com"},
		AzureDevOps: AzureDevOps{OrganizationURL: "https://dev.azure.com/acme", Project: "Boards", Token: "pat"},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid without youtrack token", mutate: func(*Config) {}},
		{
			name:    "missing youtrack url",
			mutate:  func(c *Config) { c.YouTrack.BaseURL = "" },
			wantErr: "YouTrack base URL",
		},
		{
			name:    "missing organization",
			mutate:  func(c *Config) { c.AzureDevOps.OrganizationURL = "" },
			wantErr: "organization URL",
		},
		{
			name:    "missing project",
			mutate:  func(c *Config) { c.AzureDevOps.Project = "" },
			wantErr: "project",
		},
		{
			name:    "missing pat",
			mutate:  func(c *Config) { c.AzureDevOps.Token = "" },
			wantErr: "personal access token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Config{
		YouTrack:    YouTrack{BaseURL: "https://yt.example.com", Token: "t"},
		AzureDevOps: AzureDevOps{OrganizationURL: "https://dev.azure.com/acme", Project: "Boards", Token: "pat"},
		Migration:   Migration{SourceIDField: "Custom.SourceIssueId"},
	}

	if err := Save(cfg, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file should not be world-readable: %v", info.Mode())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", loaded, cfg)
	}
}
