package azuredevops

// Operation is one JSON-patch operation in a work item create or update
// request body.
type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// AddField builds the add operation that sets a work item field.
func AddField(field string, value any) Operation {
	return Operation{Op: "add", Path: "/fields/" + field, Value: value}
}

// relation is the value of a /relations/- add operation.
type relation struct {
	Rel        string             `json:"rel"`
	URL        string             `json:"url"`
	Attributes relationAttributes `json:"attributes"`
}

type relationAttributes struct {
	Name string `json:"name"`
}

// createResponse is the subset of a work item creation response we consume.
// ID is a pointer so a response that decodes but carries no id can be told
// apart from id 0.
type createResponse struct {
	ID *int `json:"id"`
}

// attachmentResponse is the response to an attachment upload.
type attachmentResponse struct {
	URL string `json:"url"`
}

// wiqlRequest is the body of a WIQL query.
type wiqlRequest struct {
	Query string `json:"query"`
}

// wiqlResponse holds the work item references a WIQL query matched.
type wiqlResponse struct {
	WorkItems []workItemRef `json:"workItems"`
}

type workItemRef struct {
	ID int `json:"id"`
}
