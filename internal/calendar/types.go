package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventInput is the provider-agnostic description of the event to create.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []string
}

// CreatedEvent is the subset of the provider response the rest of the
// pipeline needs: the canonical links plus identifying metadata.
type CreatedEvent struct {
	ID          string
	Status      string
	HTMLLink    string
	HangoutLink string
}

// toCreatedEvent converts a Google Calendar event to a CreatedEvent.
func toCreatedEvent(event *calendar.Event) CreatedEvent {
	if event == nil {
		return CreatedEvent{}
	}
	return CreatedEvent{
		ID:          event.Id,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
		HangoutLink: event.HangoutLink,
	}
}
