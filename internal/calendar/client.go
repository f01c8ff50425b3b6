package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calinvite/calinvite/internal/google"
)

const (
	// primaryCalendarID addresses the authenticated user's own calendar.
	primaryCalendarID = "primary"

	// Reminder defaults: an email a day ahead and a popup ten minutes ahead.
	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 10
)

// Client wraps the Google Calendar service for one authenticated user.
type Client struct {
	svc       *calendar.Service
	userEmail string
}

// NewClient creates a Calendar client from an authorized handle. The client
// is built per request; nothing is shared across users or requests.
func NewClient(ctx context.Context, handle *google.Handle) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(handle.HTTPClient(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:       svc,
		userEmail: handle.UserEmail(),
	}, nil
}

// UserEmail returns the email address this client acts on behalf of.
func (c *Client) UserEmail() string {
	return c.userEmail
}

// CreateEvent inserts input into the user's primary calendar, requesting an
// auto-generated Google Meet conference.
//
// This call is not idempotent: re-invoking with the same input creates a
// second event and a second Meet room. The conference request id is a fresh
// UUID per call.
func (c *Client) CreateEvent(input EventInput) (*CreatedEvent, error) {
	event := buildEvent(input)

	created, err := c.svc.Events.Insert(primaryCalendarID, event).
		ConferenceDataVersion(1).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toCreatedEvent(created)
	return &summary, nil
}

// buildEvent maps the generic input onto the provider payload. Start and end
// are always expressed in UTC.
func buildEvent(input EventInput) *calendar.Event {
	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
		},
	}

	if len(input.Attendees) > 0 {
		attendees := make([]*calendar.EventAttendee, 0, len(input.Attendees))
		for _, email := range input.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{Email: email})
		}
		event.Attendees = attendees
	}

	return event
}
