// Package inputval holds format checks for identifiers arriving in request bodies.
package inputval

import (
	"regexp"
	"strings"
)

// emailPattern matches local@domain.tld. RE2 has no look-ahead, so the
// "no consecutive dots" rule is checked separately in IsValidEmail.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,63}$`)

// IsValidEmail reports whether s is an email-shaped token: a local part, '@',
// and a domain containing at least one dot, with no ".." anywhere.
// Surrounding whitespace is ignored.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}
