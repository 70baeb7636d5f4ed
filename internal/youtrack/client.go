// Package youtrack is a read-only client for the YouTrack REST API, covering
// just the surface a migration needs: full issue payloads and project issue
// listings.
package youtrack

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/apierror"
)

// issueFields is the field list requested for a full issue payload. The
// custom-field value attributes follow the YouTrack "get issues with all
// values" recipe so every field type round-trips.
const issueFields = "customFields(name,value(avatarUrl,buildLink,color(id),fullName,id," +
	"isResolved,localizedName,login,minutes,name,presentation,text))," +
	"created,reporter(login),summary,description," +
	"comments(created,author(login),text),attachments(base64Content,name)"

// Client is a YouTrack REST API client. A zero token means anonymous access,
// for instances that allow unauthenticated reads.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient creates a YouTrack client for the given base URL. token may be
// empty.
func NewClient(baseURL, token string) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	if token != "" {
		c.authHeader = "Bearer " + token
	}
	return c
}

// GetIssue fetches one issue's full payload: fields, comments, and
// attachments in a single request.
func (c *Client) GetIssue(id string) (*Issue, error) {
	u := fmt.Sprintf("%s/api/issues/%s?fields=%s", c.baseURL, id, url.QueryEscape(issueFields))

	var issue Issue
	if err := c.get("fetching issue", u, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListIssueIDs returns up to limit issue identifiers for a project, in the
// order YouTrack reports them. There is no pagination beyond the single
// upper bound; set limit large enough to cover the whole project.
func (c *Client) ListIssueIDs(projectKey string, limit int) ([]string, error) {
	query := url.Values{}
	query.Set("fields", "idReadable")
	query.Set("$top", fmt.Sprint(limit))
	query.Set("query", "project: "+projectKey)
	u := fmt.Sprintf("%s/api/issues?%s", c.baseURL, query.Encode())

	var refs []issueRef
	if err := c.get("listing issues", u, &refs); err != nil {
		return nil, err
	}

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.IDReadable
	}
	return ids, nil
}

// IssueURL returns the human-facing link to an issue, used in provenance
// text on the migrated work items.
func (c *Client) IssueURL(id string) string {
	return fmt.Sprintf("%s/issue/%s", c.baseURL, id)
}

// CheckAuth verifies that the instance is reachable and the credential (or
// anonymous access) can read issues.
func (c *Client) CheckAuth() error {
	var refs []issueRef
	return c.get("checking access", c.baseURL+"/api/issues?fields=idReadable&$top=1", &refs)
}

func (c *Client) get(op, u string, out any) error {
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apierror.TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &apierror.TransportError{Op: op, URL: u, Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apierror.DecodeError{Op: op, Err: err}
	}
	return nil
}
