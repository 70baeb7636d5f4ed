package youtrack

// Issue is a YouTrack issue with everything a migration needs: summary,
// description, provenance, custom fields, comments, and attachments.
type Issue struct {
	Summary      string        `json:"summary"`
	Description  string        `json:"description"`
	Created      int64         `json:"created"` // epoch milliseconds
	Reporter     User          `json:"reporter"`
	CustomFields []CustomField `json:"customFields"`
	Comments     []Comment     `json:"comments"`
	Attachments  []Attachment  `json:"attachments"`
}

// User carries the only user attribute we keep: the login.
type User struct {
	Login string `json:"login"`
}

// CustomField is one custom field on an issue. The value shape depends on the
// field type (enum, user, period, text, ...), so it stays opaque here and is
// interpreted by the field-mapping rules.
type CustomField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Comment is a single issue comment.
type Comment struct {
	Author  User   `json:"author"`
	Created int64  `json:"created"` // epoch milliseconds
	Text    string `json:"text"`
}

// Attachment is an issue attachment with its content inlined by the API.
type Attachment struct {
	Name          string `json:"name"`
	Base64Content string `json:"base64Content"`
}

// CustomFieldMap returns the issue's custom fields as a name → value map for
// field-mapping policies.
func (i *Issue) CustomFieldMap() map[string]any {
	fields := make(map[string]any, len(i.CustomFields))
	for _, f := range i.CustomFields {
		fields[f.Name] = f.Value
	}
	return fields
}

// issueRef is the minimal issue shape returned by list queries.
type issueRef struct {
	IDReadable string `json:"idReadable"`
}
