package cascade

import (
	"encoding/json"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/system/inputval"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
)

// RawIdentifier is one element of the request's identifier list.
// For non-string elements Text is the element's raw JSON.
type RawIdentifier struct {
	Text     string
	IsString bool
}

// ParseIdentifiers converts raw JSON array elements into identifiers.
func ParseIdentifiers(elems []json.RawMessage) []RawIdentifier {
	out := make([]RawIdentifier, 0, len(elems))
	for _, e := range elems {
		var s string
		if err := json.Unmarshal(e, &s); err == nil {
			out = append(out, RawIdentifier{Text: s, IsString: true})
			continue
		}
		out = append(out, RawIdentifier{Text: strings.TrimSpace(string(e))})
	}
	return out
}

// Strings builds string identifiers; handy for callers that already have text.
func Strings(ss ...string) []RawIdentifier {
	out := make([]RawIdentifier, len(ss))
	for i, s := range ss {
		out[i] = RawIdentifier{Text: s, IsString: true}
	}
	return out
}

// NormalizeResult is the output of Normalize.
type NormalizeResult struct {
	Accepted   []string // lowercased emails, first occurrence order
	Rejected   []Rejection
	Duplicates int
}

// Normalize validates and canonicalizes raw identifiers. Rejected entries
// report the identifier as given; accepted ones are trimmed and lowercased
// with later duplicates dropped.
func Normalize(raw []RawIdentifier, actorEmail string) NormalizeResult {
	var res NormalizeResult
	self := normalize.Email(actorEmail)
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		if !r.IsString || !inputval.IsValidEmail(r.Text) {
			res.Rejected = append(res.Rejected, invalidFormat(r.Text))
			continue
		}
		email := normalize.Email(r.Text)
		if self != "" && email == self {
			res.Rejected = append(res.Rejected, isSelf(r.Text))
			continue
		}
		if _, dup := seen[email]; dup {
			res.Duplicates++
			continue
		}
		seen[email] = struct{}{}
		res.Accepted = append(res.Accepted, email)
	}
	return res
}
