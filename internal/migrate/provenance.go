package migrate

import (
	"fmt"
	"strings"
	"time"
)

// formatTimestamp renders a YouTrack epoch-millisecond timestamp as a naive
// ISO-8601 date-time, truncated to whole seconds. Work items don't keep the
// source timestamps natively; these strings only appear in provenance text.
func formatTimestamp(ms int64) string {
	return time.Unix(ms/1000, 0).UTC().Format("2006-01-02T15:04:05")
}

// descriptionText synthesizes the work item description: a provenance header
// linking back to the source issue, a blank line, then the original
// description. Newlines become explicit <br /> markers so the description
// keeps its line structure in the work item's rich-text rendering.
func descriptionText(issueURL, reporter string, createdMS int64, body string) string {
	text := fmt.Sprintf(
		"[Migrated from <a href=\"%s\">YouTrack</a>, originally reported by %s on %s]\n\n%s",
		issueURL, reporter, formatTimestamp(createdMS), body)
	return strings.ReplaceAll(text, "\n", "<br />\n")
}

// commentText synthesizes a migrated comment: provenance prefix crediting the
// original author, a blank line, then the original text with explicit
// line-break markers.
func commentText(issueURL, author string, createdMS int64, body string) string {
	text := fmt.Sprintf(
		"[Migrated from <a href=\"%s\">YouTrack</a>. Original comment by %s on %s]\n\n%s",
		issueURL, author, formatTimestamp(createdMS), body)
	return strings.ReplaceAll(text, "\n", "<br/>\n")
}
