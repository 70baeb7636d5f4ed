package azuredevops

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fuglede/youtrack-to-azure-devops-boards/internal/apierror"
)

// recordedRequest captures one request seen by the test server.
type recordedRequest struct {
	method      string
	path        string
	query       string
	contentType string
	auth        string
	body        []byte
}

func recordingServer(t *testing.T, respond func(r recordedRequest, w http.ResponseWriter)) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec := recordedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			auth:        r.Header.Get("Authorization"),
			body:        body,
		}
		requests = append(requests, rec)
		respond(rec, w)
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestCreateWorkItem(t *testing.T) {
	server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{"id": 17, "rev": 1}`))
	})

	client := NewClient(server.URL, "Proj", "pat")
	ops := []Operation{AddField("System.Title", "Fix crash")}

	id, err := client.CreateWorkItem("Task", ops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 17 {
		t.Errorf("expected id 17, got %d", id)
	}

	req := (*requests)[0]
	if req.method != "POST" || req.path != "/Proj/_apis/wit/workitems/$Task" {
		t.Errorf("unexpected request: %s %s", req.method, req.path)
	}
	if req.query != "api-version=6.0" {
		t.Errorf("unexpected query: %s", req.query)
	}
	if req.contentType != "application/json-patch+json" {
		t.Errorf("unexpected content type: %s", req.contentType)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte(":pat"))
	if req.auth != wantAuth {
		t.Errorf("unexpected auth header: %q", req.auth)
	}

	var sent []map[string]any
	if err := json.Unmarshal(req.body, &sent); err != nil {
		t.Fatalf("request body is not a JSON-patch list: %v", err)
	}
	if len(sent) != 1 || sent[0]["op"] != "add" || sent[0]["path"] != "/fields/System.Title" || sent[0]["value"] != "Fix crash" {
		t.Errorf("unexpected operations: %v", sent)
	}
}

func TestCreateWorkItemErrors(t *testing.T) {
	tests := []struct {
		name         string
		handler      func(r recordedRequest, w http.ResponseWriter)
		wantDecode   bool
		wantCreation bool
	}{
		{
			name: "response without id",
			handler: func(r recordedRequest, w http.ResponseWriter) {
				w.Write([]byte(`{"message": "TF401349: oops"}`))
			},
			wantCreation: true,
		},
		{
			name:       "empty body",
			handler:    func(r recordedRequest, w http.ResponseWriter) {},
			wantDecode: true,
		},
		{
			name: "non-2xx",
			handler: func(r recordedRequest, w http.ResponseWriter) {
				http.Error(w, "bad", http.StatusBadRequest)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := recordingServer(t, tt.handler)
			client := NewClient(server.URL, "Proj", "pat")

			_, err := client.CreateWorkItem("Task", nil)
			if err == nil {
				t.Fatal("expected an error")
			}

			if got := apierror.IsDecode(err); got != tt.wantDecode {
				t.Errorf("IsDecode = %v, want %v (err: %v)", got, tt.wantDecode, err)
			}
			var creationErr *CreationError
			if got := errors.As(err, &creationErr); got != tt.wantCreation {
				t.Errorf("CreationError = %v, want %v (err: %v)", got, tt.wantCreation, err)
			}
			if tt.wantCreation && !strings.Contains(creationErr.Response, "TF401349") {
				t.Errorf("CreationError does not carry the raw response: %q", creationErr.Response)
			}
		})
	}
}

func TestPatchWorkItemIgnoresResponse(t *testing.T) {
	// The update contract is fire-and-forget: even a server error response
	// is not an error.
	server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client := NewClient(server.URL, "Proj", "pat")
	if err := client.PatchWorkItem(17, []Operation{AddField("System.History", "x")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := (*requests)[0]
	if req.method != "PATCH" || req.path != "/Proj/_apis/wit/workitems/17" {
		t.Errorf("unexpected request: %s %s", req.method, req.path)
	}
}

func TestAddComment(t *testing.T) {
	server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{}`))
	})

	client := NewClient(server.URL, "Proj", "pat")
	if err := client.AddComment(17, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := (*requests)[0]
	if req.path != "/Proj/_apis/wit/workItems/17/comments" {
		t.Errorf("unexpected path: %s", req.path)
	}
	if req.query != "api-version=6.0-preview.3" {
		t.Errorf("unexpected query: %s", req.query)
	}

	var sent map[string]string
	if err := json.Unmarshal(req.body, &sent); err != nil {
		t.Fatal(err)
	}
	if sent["text"] != "hello" {
		t.Errorf("unexpected body: %v", sent)
	}
}

func TestUploadAttachment(t *testing.T) {
	server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{"id": "abc", "url": "https://dev.azure.com/att/abc"}`))
	})

	client := NewClient(server.URL, "Proj", "pat")
	url, err := client.UploadAttachment([]byte{0x1, 0x2, 0x3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://dev.azure.com/att/abc" {
		t.Errorf("unexpected url: %s", url)
	}

	req := (*requests)[0]
	if req.path != "/Proj/_apis/wit/attachments" {
		t.Errorf("unexpected path: %s", req.path)
	}
	if req.contentType != "application/octet-stream" {
		t.Errorf("unexpected content type: %s", req.contentType)
	}
	if len(req.body) != 3 || req.body[0] != 0x1 {
		t.Errorf("raw bytes not sent verbatim: %v", req.body)
	}
}

func TestUploadAttachmentMissingURL(t *testing.T) {
	server, _ := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{"id": "abc"}`))
	})

	_, err := NewClient(server.URL, "Proj", "pat").UploadAttachment([]byte("x"))
	if !apierror.IsDecode(err) {
		t.Errorf("expected a decode error, got %v", err)
	}
}

func TestLinkAttachment(t *testing.T) {
	server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
		w.Write([]byte(`{}`))
	})

	client := NewClient(server.URL, "Proj", "pat")
	if err := client.LinkAttachment(17, "https://dev.azure.com/att/abc", "log.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := (*requests)[0]
	if req.method != "PATCH" || req.path != "/Proj/_apis/wit/workItems/17" {
		t.Errorf("unexpected request: %s %s", req.method, req.path)
	}

	var sent []map[string]any
	if err := json.Unmarshal(req.body, &sent); err != nil {
		t.Fatal(err)
	}
	if len(sent) != 1 || sent[0]["path"] != "/relations/-" {
		t.Fatalf("unexpected operations: %v", sent)
	}
	value := sent[0]["value"].(map[string]any)
	if value["rel"] != "AttachedFile" || value["url"] != "https://dev.azure.com/att/abc" {
		t.Errorf("unexpected relation: %v", value)
	}
	attrs := value["attributes"].(map[string]any)
	if attrs["name"] != "log.txt" {
		t.Errorf("original file name not preserved: %v", attrs)
	}
}

func TestQueryWorkItemBySourceID(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
			w.Write([]byte(`{"workItems": [{"id": 42}, {"id": 43}]}`))
		})

		client := NewClient(server.URL, "Proj", "pat")
		id, ok, err := client.QueryWorkItemBySourceID("Custom.SourceIssueId", "X-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || id != 42 {
			t.Errorf("expected first match 42, got %d (ok=%v)", id, ok)
		}

		var sent map[string]string
		if err := json.Unmarshal((*requests)[0].body, &sent); err != nil {
			t.Fatal(err)
		}
		want := "SELECT [System.Id] FROM WorkItems WHERE [Custom.SourceIssueId] = 'X-1'"
		if sent["query"] != want {
			t.Errorf("unexpected WIQL:\ngot:  %s\nwant: %s", sent["query"], want)
		}
	})

	t.Run("no match", func(t *testing.T) {
		server, _ := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
			w.Write([]byte(`{"workItems": []}`))
		})

		_, ok, err := NewClient(server.URL, "Proj", "pat").QueryWorkItemBySourceID("Custom.SourceIssueId", "X-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected no match")
		}
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		server, requests := recordingServer(t, func(r recordedRequest, w http.ResponseWriter) {
			w.Write([]byte(`{"workItems": []}`))
		})

		NewClient(server.URL, "Proj", "pat").QueryWorkItemBySourceID("F", "a'b")

		var sent map[string]string
		json.Unmarshal((*requests)[0].body, &sent)
		if !strings.Contains(sent["query"], "'a''b'") {
			t.Errorf("quote not escaped: %s", sent["query"])
		}
	})
}
