package invite

import "fmt"

// ValidationError reports a malformed or incomplete request. The handler
// maps it to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// AuthenticationError reports a failed authorization: consent denied,
// abandoned flow, or token exchange failure. Nothing has been created on the
// provider side when this is returned.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// EventCreationError reports that the calendar provider rejected the event.
// No compensating rollback is needed since nothing else was created yet.
type EventCreationError struct {
	Err error
}

func (e *EventCreationError) Error() string {
	return fmt.Sprintf("event creation failed: %v", e.Err)
}

func (e *EventCreationError) Unwrap() error {
	return e.Err
}

// NotificationError reports a single failed invitation send. It is logged
// and swallowed by the pipeline, never returned to the handler. The message
// deliberately omits the recipient address; it ends up in logs, where only
// hashed recipients are allowed.
type NotificationError struct {
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("invitation send failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}
