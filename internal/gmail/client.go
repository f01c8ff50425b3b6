package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/calinvite/calinvite/internal/google"
)

// Client wraps the Gmail Users service for one authenticated user.
type Client struct {
	svc       *gmail.UsersService
	userEmail string
}

// NewClient creates a Gmail client from an authorized handle. The client is
// built per request; nothing is shared across users or requests.
func NewClient(ctx context.Context, handle *google.Handle) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(handle.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:       svc.Users,
		userEmail: handle.UserEmail(),
	}, nil
}

// UserEmail returns the email address this client sends as.
func (c *Client) UserEmail() string {
	return c.userEmail
}

// SendInvite sends a single HTML email from one address to one recipient and
// returns the provider's message id.
func (c *Client) SendInvite(from, to, subject, htmlBody string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("recipient is required")
	}
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}

	msg := &gmail.Message{
		Raw: BuildRawMessage(from, to, subject, htmlBody),
	}

	sent, err := c.svc.Messages.Send("me", msg).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}

// BuildRawMessage composes a single-part HTML email and encodes it the way
// the Gmail API expects: base64 with the URL-safe alphabet and no padding.
func BuildRawMessage(from, to, subject, body string) string {
	lines := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + encodeRFC2047(subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"",
		body,
	}

	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(lines, "\n")))
}

// encodeRFC2047 encodes a header value per RFC 2047 when it contains
// non-ASCII characters (umlauts and the like). ASCII-only values pass
// through unchanged.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}
