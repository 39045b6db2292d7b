// internal/app/system/sanitize/sanitize.go

// Package sanitize scrubs user-supplied text before it is persisted.
// Titles and names are stripped to plain text; description and chat bodies
// keep basic formatting markup but lose scripts and event handlers.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips all markup, returning trimmed plain text. Use for titles,
// names, and tag names.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Body allows user-generated-content markup (paragraphs, emphasis, links)
// while removing scripts and unsafe attributes. Use for descriptions and
// chat message content.
func Body(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
