package cms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from backend-provided summaries and collapses whitespace.
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	clean := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}
