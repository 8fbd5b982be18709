package cascade

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      []RawIdentifier
		actor    string
		accepted []string
		rejected []ReasonCode
		dups     int
	}{
		{
			name:     "lowercases and trims",
			raw:      Strings("  PM1@Example.com "),
			actor:    "admin@example.com",
			accepted: []string{"pm1@example.com"},
		},
		{
			name:     "first occurrence wins",
			raw:      Strings("b@x.com", "a@x.com", "B@X.COM"),
			actor:    "admin@x.com",
			accepted: []string{"b@x.com", "a@x.com"},
			dups:     1,
		},
		{
			name:     "self rejected anywhere",
			raw:      Strings("ADMIN@x.com", "pm@x.com", "admin@x.com"),
			actor:    "Admin@X.com",
			accepted: []string{"pm@x.com"},
			rejected: []ReasonCode{ReasonIsSelf, ReasonIsSelf},
		},
		{
			name:     "bad formats",
			raw:      Strings("bad-email", "a..b@x.com", "", "x@y"),
			actor:    "admin@x.com",
			rejected: []ReasonCode{ReasonInvalidFormat, ReasonInvalidFormat, ReasonInvalidFormat, ReasonInvalidFormat},
		},
		{
			name:     "non-string",
			raw:      []RawIdentifier{{Text: "42"}, {Text: "a@x.com", IsString: false}},
			actor:    "admin@x.com",
			rejected: []ReasonCode{ReasonInvalidFormat, ReasonInvalidFormat},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.actor)
			if !reflect.DeepEqual(got.Accepted, tt.accepted) {
				t.Errorf("Accepted = %v, want %v", got.Accepted, tt.accepted)
			}
			var reasons []ReasonCode
			for _, r := range got.Rejected {
				reasons = append(reasons, r.Reason)
			}
			if !reflect.DeepEqual(reasons, tt.rejected) {
				t.Errorf("Rejected reasons = %v, want %v", reasons, tt.rejected)
			}
			if got.Duplicates != tt.dups {
				t.Errorf("Duplicates = %d, want %d", got.Duplicates, tt.dups)
			}
		})
	}
}

func TestNormalize_RejectionKeepsRawIdentifier(t *testing.T) {
	got := Normalize(Strings("  Bad Email "), "admin@x.com")
	if len(got.Rejected) != 1 {
		t.Fatalf("Rejected = %v", got.Rejected)
	}
	if got.Rejected[0].Identifier != "  Bad Email " {
		t.Errorf("Identifier = %q, want raw input", got.Rejected[0].Identifier)
	}
	if got.Rejected[0].Message == "" {
		t.Error("expected a message")
	}
}

func TestParseIdentifiers(t *testing.T) {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(`["a@x.com", 7, null, {"e":1}, true]`), &elems); err != nil {
		t.Fatal(err)
	}
	got := ParseIdentifiers(elems)
	want := []RawIdentifier{
		{Text: "a@x.com", IsString: true},
		{Text: "7"},
		{Text: "null"},
		{Text: `{"e":1}`},
		{Text: "true"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseIdentifiers = %#v, want %#v", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		res  BatchResult
		err  error
		want Outcome
	}{
		{"all good", BatchResult{ValidProcessed: []string{"a"}}, nil, OutcomeSuccess},
		{"some skipped", BatchResult{ValidProcessed: []string{"a"}, InvalidOrSkipped: []Rejection{notFound("b")}}, nil, OutcomePartial},
		{"none valid", BatchResult{InvalidOrSkipped: []Rejection{notFound("b")}}, nil, OutcomeNotFound},
		{"store error", BatchResult{ValidProcessed: []string{"a"}}, &StoreError{Phase: PhaseDelete}, OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.res, tt.err); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}

	statuses := map[Outcome]int{
		OutcomeSuccess: 200, OutcomePartial: 207, OutcomeBadInput: 400,
		OutcomeForbidden: 403, OutcomeNotFound: 404, OutcomeFailed: 500,
	}
	for o, want := range statuses {
		if got := o.HTTPStatus(); got != want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", o, got, want)
		}
	}
}
