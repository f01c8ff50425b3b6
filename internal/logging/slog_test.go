package logging

import (
	"strings"
	"testing"
)

func TestAnonymizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
	}{
		{name: "simple email", email: "user@example.com"},
		{name: "email with plus", email: "user+tag@example.com"},
		{name: "uppercase email", email: "USER@EXAMPLE.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeEmail(tt.email)

			if !strings.HasPrefix(got, "user:") {
				t.Errorf("AnonymizeEmail(%q) = %q, want user: prefix", tt.email, got)
			}
			if strings.Contains(got, tt.email) {
				t.Errorf("AnonymizeEmail(%q) = %q, leaks the raw address", tt.email, got)
			}

			// Same input must produce the same hash so log lines correlate.
			if again := AnonymizeEmail(tt.email); again != got {
				t.Errorf("AnonymizeEmail not deterministic: %q != %q", again, got)
			}
		})
	}
}

func TestAnonymizeEmail_Empty(t *testing.T) {
	if got := AnonymizeEmail(""); got != "" {
		t.Errorf("AnonymizeEmail(\"\") = %q, want empty string", got)
	}
}

func TestAnonymizeEmail_DifferentInputsDiffer(t *testing.T) {
	a := AnonymizeEmail("a@example.com")
	b := AnonymizeEmail("b@example.com")
	if a == b {
		t.Errorf("expected different hashes for different emails, both %q", a)
	}
}

func TestErr_NilError(t *testing.T) {
	attr := Err(nil)
	// A nil error must produce an attribute that slog omits from output.
	if attr.Value.String() != "[]" && attr.Key != "" {
		t.Errorf("Err(nil) = %v, want empty group", attr)
	}
}
