// Package htmlsanitize cleans user-supplied HTML before it is stored.
//
// Group descriptions accept a user-generated-content subset of HTML; names
// and other single-line fields are reduced to plain text.
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		rich = bluemonday.UGCPolicy()
		rich.AllowAttrs("class").OnElements("table", "tr", "td", "th")
		strict = bluemonday.StrictPolicy()
	})
	return rich, strict
}

// Sanitize strips scripts, event handlers, unsafe URLs, and any element
// outside the UGC allowlist from s.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return p.Sanitize(s)
}

// Text removes all markup from s and trims surrounding whitespace.
func Text(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(p.Sanitize(s))
}
