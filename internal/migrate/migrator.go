// Package migrate orchestrates the one-way migration of YouTrack issues to
// Azure DevOps Boards work items: per-issue field translation, provenance
// rewriting, two-phase attachment transfer, and the project-level driver
// with transient-failure retry.
package migrate

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/juju/loggo/v2"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/azuredevops"
	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/youtrack"
)

var logger = loggo.GetLogger("yt2ado.migrate")

// DefaultWorkItemType is the work item type created when none is configured.
const DefaultWorkItemType = "Task"

// SourceClient is the read side of a migration, implemented by
// *youtrack.Client.
type SourceClient interface {
	GetIssue(id string) (*youtrack.Issue, error)
	ListIssueIDs(projectKey string, limit int) ([]string, error)
	IssueURL(id string) string
}

// TargetClient is the write side of a migration, implemented by
// *azuredevops.Client.
type TargetClient interface {
	CreateWorkItem(itemType string, ops []azuredevops.Operation) (int, error)
	PatchWorkItem(id int, ops []azuredevops.Operation) error
	AddComment(id int, text string) error
	UploadAttachment(data []byte) (string, error)
	LinkAttachment(id int, url, name string) error
	QueryWorkItemBySourceID(field, sourceID string) (int, bool, error)
}

// Migrator translates one issue at a time. It holds no per-issue state, so a
// single Migrator serves a whole project run.
type Migrator struct {
	Source SourceClient
	Target TargetClient
	Mapper FieldMapper

	// ItemType is the work item type to create; empty means
	// DefaultWorkItemType.
	ItemType string

	// SourceIDField, when set, names a work item field that records the
	// source issue id. MigrateIssue then checks for an existing work item
	// with the same source id first and skips the issue if one exists.
	// When empty, re-running a migration creates duplicate work items.
	SourceIDField string
}

// MigrateIssue copies one YouTrack issue to a new work item and returns the
// work item id. It runs in ordered phases with no rollback: fetch, create
// (title, description, and immediately-applicable mapped fields in one
// request), deferred field patch, comments in source order, then attachments
// in source order. Side effects of completed phases are permanent even if a
// later phase fails.
func (m *Migrator) MigrateIssue(sourceID string) (int, error) {
	mapper := m.Mapper
	if mapper == nil {
		mapper = NopMapper
	}
	itemType := m.ItemType
	if itemType == "" {
		itemType = DefaultWorkItemType
	}

	if m.SourceIDField != "" {
		id, ok, err := m.Target.QueryWorkItemBySourceID(m.SourceIDField, sourceID)
		if err != nil {
			return 0, fmt.Errorf("checking for existing work item for %s: %w", sourceID, err)
		}
		if ok {
			logger.Infof("%s already migrated as work item %d, skipping", sourceID, id)
			return id, nil
		}
	}

	issue, err := m.Source.GetIssue(sourceID)
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", sourceID, err)
	}
	issueURL := m.Source.IssueURL(sourceID)

	createOps := []azuredevops.Operation{
		azuredevops.AddField("System.Title", issue.Summary),
		azuredevops.AddField("System.Description",
			descriptionText(issueURL, issue.Reporter.Login, issue.Created, issue.Description)),
	}
	if m.SourceIDField != "" {
		createOps = append(createOps, azuredevops.AddField(m.SourceIDField, sourceID))
	}

	before, after := splitAssignments(mapper.Map(issue.CustomFieldMap()))
	for _, a := range before {
		createOps = append(createOps, azuredevops.AddField(a.Field, a.Value))
	}

	workItemID, err := m.Target.CreateWorkItem(itemType, createOps)
	if err != nil {
		return 0, fmt.Errorf("creating work item for %s: %w", sourceID, err)
	}

	// Fields that can only be set once the work item exists. Best effort:
	// the update is not verified and a failure does not abort the issue.
	if len(after) > 0 {
		ops := make([]azuredevops.Operation, 0, len(after))
		for _, a := range after {
			ops = append(ops, azuredevops.AddField(a.Field, a.Value))
		}
		if err := m.Target.PatchWorkItem(workItemID, ops); err != nil {
			logger.Warningf("deferred field update for %s (work item %d) failed: %v", sourceID, workItemID, err)
		}
	}

	for _, comment := range issue.Comments {
		text := commentText(issueURL, comment.Author.Login, comment.Created, comment.Text)
		if err := m.Target.AddComment(workItemID, text); err != nil {
			return 0, fmt.Errorf("migrating comment on %s: %w", sourceID, err)
		}
	}

	for _, att := range issue.Attachments {
		data, err := decodeAttachment(att.Base64Content)
		if err != nil {
			return 0, fmt.Errorf("decoding attachment %q on %s: %w", att.Name, sourceID, err)
		}
		url, err := m.Target.UploadAttachment(data)
		if err != nil {
			return 0, fmt.Errorf("uploading attachment %q for %s: %w", att.Name, sourceID, err)
		}
		if err := m.Target.LinkAttachment(workItemID, url, att.Name); err != nil {
			return 0, fmt.Errorf("linking attachment %q on %s: %w", att.Name, sourceID, err)
		}
	}

	return workItemID, nil
}

// decodeAttachment decodes a YouTrack base64Content payload. The payload may
// carry a data-URI prefix ("<meta>,<base64>"); only the part after the first
// comma is encoded data.
func decodeAttachment(content string) ([]byte, error) {
	if i := strings.Index(content, ","); i >= 0 {
		content = content[i+1:]
	}
	return base64.StdEncoding.DecodeString(content)
}
