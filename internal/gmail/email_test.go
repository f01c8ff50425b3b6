package gmail

import (
	"encoding/base64"
	"mime"
	"strings"
	"testing"
)

func TestBuildRawMessage_RoundTrip(t *testing.T) {
	raw := BuildRawMessage("a@x.com", "b@x.com", "Hi", "<p>hello</p>")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not unpadded base64url: %v", err)
	}

	want := "From: a@x.com\n" +
		"To: b@x.com\n" +
		"Subject: Hi\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: text/html; charset=UTF-8\n" +
		"\n" +
		"<p>hello</p>"
	if string(decoded) != want {
		t.Errorf("decoded message = %q, want %q", decoded, want)
	}
}

func TestBuildRawMessage_NoPadding(t *testing.T) {
	// Vary body length to hit every base64 padding case.
	for _, body := range []string{"x", "xy", "xyz", "xyzw"} {
		raw := BuildRawMessage("a@x.com", "b@x.com", "Hi", body)
		if strings.ContainsAny(raw, "=+/") {
			t.Errorf("raw message for body %q contains forbidden characters: %q", body, raw)
		}
	}
}

func TestBuildRawMessage_NonASCIISubject(t *testing.T) {
	raw := BuildRawMessage("a@x.com", "b@x.com", "Grüße aus Köln", "<p>hi</p>")

	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatal(err)
	}

	var subjectLine string
	for _, line := range strings.Split(string(decoded), "\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subjectLine = strings.TrimPrefix(line, "Subject: ")
			break
		}
	}
	if subjectLine == "" {
		t.Fatal("no Subject header in decoded message")
	}

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(subjectLine)
	if err != nil {
		t.Fatalf("subject header not RFC 2047 decodable: %v", err)
	}
	if subject != "Grüße aus Köln" {
		t.Errorf("decoded subject = %q, want %q", subject, "Grüße aus Köln")
	}
}

func TestEncodeRFC2047_ASCIIPassthrough(t *testing.T) {
	if got := encodeRFC2047("Plain ASCII subject"); got != "Plain ASCII subject" {
		t.Errorf("encodeRFC2047 changed an ASCII subject: %q", got)
	}
}

func TestSendInvite_Validation(t *testing.T) {
	tests := []struct {
		name        string
		to          string
		subject     string
		errContains string
	}{
		{name: "missing recipient", to: "", subject: "Hi", errContains: "recipient is required"},
		{name: "missing subject", to: "b@x.com", subject: "", errContains: "subject is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Validation fires before any API call, so a zero client is fine.
			c := &Client{}

			_, err := c.SendInvite("a@x.com", tt.to, tt.subject, "<p>body</p>")
			if err == nil {
				t.Fatal("SendInvite() = nil error, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("SendInvite() error = %v, should contain %q", err, tt.errContains)
			}
		})
	}
}
