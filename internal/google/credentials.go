package google

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// Scopes are the OAuth scopes this service requests: full calendar access to
// insert events, and gmail.send to deliver invitation emails. Both are
// requested up front so a single consent covers the whole pipeline.
var Scopes = []string{
	calendar.CalendarScope,
	gmail.GmailSendScope,
}

// LoadOAuthConfig reads the Google application credential file (the
// credentials.json downloaded from the Google Cloud console, with an
// "installed" or "web" key) and returns the OAuth2 config for the fixed
// scope set. The file is read once at startup; the result is immutable for
// the process lifetime.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read application credentials %s: %w", path, err)
	}

	conf, err := google.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse application credentials %s: %w", path, err)
	}

	return conf, nil
}
