// Package azuredevops is a write-mostly client for the Azure DevOps Boards
// work item tracking REST API: creating work items, patching fields, posting
// comments, and the two-phase attachment upload.
package azuredevops

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/apierror"
)

const (
	apiVersion         = "6.0"
	commentsAPIVersion = "6.0-preview.3"
)

// CreationError means a work item creation response decoded fine but carried
// no id. It is fatal for the issue being migrated and is never retried.
type CreationError struct {
	Response string // raw response body, for the operator
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("work item creation response contained no id: %s", e.Response)
}

// Client is an Azure DevOps work item tracking client, scoped to one project.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient creates a client for <organizationURL>/<project>, authenticating
// every call with the personal access token.
func NewClient(organizationURL, project, pat string) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(":" + pat))
	return &Client{
		baseURL:    fmt.Sprintf("%s/%s/_apis/wit", strings.TrimRight(organizationURL, "/"), project),
		authHeader: "Basic " + creds,
		httpClient: &http.Client{},
	}
}

// CreateWorkItem creates one work item of the given type from JSON-patch add
// operations and returns its id. A response without an id fails with
// CreationError.
func (c *Client) CreateWorkItem(itemType string, ops []Operation) (int, error) {
	u := fmt.Sprintf("%s/workitems/$%s?api-version=%s", c.baseURL, itemType, apiVersion)
	const op = "creating work item"

	body, err := c.do(op, "POST", u, "application/json-patch+json", ops)
	if err != nil {
		return 0, err
	}

	var res createResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, &apierror.DecodeError{Op: op, Err: err}
	}
	if res.ID == nil {
		return 0, &CreationError{Response: string(body)}
	}
	return *res.ID, nil
}

// PatchWorkItem applies JSON-patch operations to an existing work item. The
// response is not validated: the migration contract treats deferred field
// updates as fire-and-forget, so only transport failures are reported.
func (c *Client) PatchWorkItem(id int, ops []Operation) error {
	u := fmt.Sprintf("%s/workitems/%d?api-version=%s", c.baseURL, id, apiVersion)
	return c.fireAndForget("updating work item", "PATCH", u, "application/json-patch+json", ops)
}

// AddComment posts one comment to a work item.
func (c *Client) AddComment(id int, text string) error {
	u := fmt.Sprintf("%s/workItems/%d/comments?api-version=%s", c.baseURL, id, commentsAPIVersion)
	return c.fireAndForget("adding comment", "POST", u, "application/json", map[string]string{"text": text})
}

// UploadAttachment uploads raw bytes as a new attachment and returns the URL
// Azure DevOps assigned to it. The caller links the URL to a work item with
// LinkAttachment.
func (c *Client) UploadAttachment(data []byte) (string, error) {
	u := fmt.Sprintf("%s/attachments?api-version=%s", c.baseURL, apiVersion)
	const op = "uploading attachment"

	req, err := http.NewRequest("POST", u, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apierror.TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &apierror.TransportError{Op: op, URL: u, Status: resp.StatusCode, Body: string(body)}
	}

	var res attachmentResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", &apierror.DecodeError{Op: op, Err: err}
	}
	if res.URL == "" {
		return "", &apierror.DecodeError{Op: op, Err: errors.New("response contained no url")}
	}
	return res.URL, nil
}

// LinkAttachment attaches an uploaded file to a work item by adding an
// AttachedFile relation carrying the original file name. Unchecked like
// PatchWorkItem.
func (c *Client) LinkAttachment(id int, url, name string) error {
	u := fmt.Sprintf("%s/workItems/%d?api-version=%s", c.baseURL, id, apiVersion)
	ops := []Operation{{
		Op:   "add",
		Path: "/relations/-",
		Value: relation{
			Rel:        "AttachedFile",
			URL:        url,
			Attributes: relationAttributes{Name: name},
		},
	}}
	return c.fireAndForget("linking attachment", "PATCH", u, "application/json-patch+json", ops)
}

// QueryWorkItemBySourceID looks up a work item whose given field holds
// sourceID. It returns the first match, used to skip issues that were already
// migrated.
func (c *Client) QueryWorkItemBySourceID(field, sourceID string) (int, bool, error) {
	u := fmt.Sprintf("%s/wiql?api-version=%s", c.baseURL, apiVersion)
	const op = "querying work items"

	wiql := wiqlRequest{
		Query: fmt.Sprintf("SELECT [System.Id] FROM WorkItems WHERE [%s] = '%s'",
			field, strings.ReplaceAll(sourceID, "'", "''")),
	}
	body, err := c.do(op, "POST", u, "application/json", wiql)
	if err != nil {
		return 0, false, err
	}

	var res wiqlResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, false, &apierror.DecodeError{Op: op, Err: err}
	}
	if len(res.WorkItems) == 0 {
		return 0, false, nil
	}
	return res.WorkItems[0].ID, true, nil
}

// CheckAuth verifies the organization, project, and token by listing work
// item fields.
func (c *Client) CheckAuth() error {
	u := fmt.Sprintf("%s/fields?api-version=%s", c.baseURL, apiVersion)
	const op = "checking credentials"

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apierror.TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &apierror.TransportError{Op: op, URL: u, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// do sends a JSON request, requires a 2xx response, and returns the body.
func (c *Client) do(op, method, u, contentType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequest(method, u, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apierror.TransportError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apierror.TransportError{Op: op, URL: u, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// fireAndForget sends a JSON request and discards the response entirely,
// reporting only transport failures.
func (c *Client) fireAndForget(op, method, u, contentType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}

	req, err := http.NewRequest(method, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apierror.TransportError{Op: op, URL: u, Err: err}
	}
	resp.Body.Close()
	return nil
}
