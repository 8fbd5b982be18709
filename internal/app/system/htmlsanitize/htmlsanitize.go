// Package htmlsanitize strips markup from untrusted strings before they are
// persisted somewhere an HTML view will later render them (audit details).
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strict = bluemonday.StrictPolicy()
	})
	return strict
}

// StripTags removes every HTML element from s, keeping the text content.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strictPolicy().Sanitize(s)
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
