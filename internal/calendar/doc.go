// Package calendar wraps the Google Calendar API for event creation.
//
// Events are inserted into the authenticated user's primary calendar with an
// auto-generated Google Meet conference and the service's default reminders.
package calendar
