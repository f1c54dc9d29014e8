package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxNameLen = 64

var policy = bluemonday.StrictPolicy()

// SanitizeName strips markup from a player id or display name and caps its
// length. The result is plain text; the policy's entity escaping is undone
// since names travel as JSON, not HTML.
func SanitizeName(name string) string {
	cleaned := html.UnescapeString(policy.Sanitize(name))
	cleaned = strings.TrimSpace(cleaned)
	if r := []rune(cleaned); len(r) > maxNameLen {
		cleaned = string(r[:maxNameLen])
	}
	return cleaned
}
