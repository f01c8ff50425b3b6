// Package invite implements the create-event pipeline: authorize the user,
// insert the calendar event with its Meet link, then send each participant
// an invitation email.
//
// The pipeline is strictly sequential per request. Failures before or during
// event creation abort the request; failures while sending invitations are
// logged and swallowed, since the event already exists at that point.
package invite
