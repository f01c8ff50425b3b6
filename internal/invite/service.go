package invite

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/calinvite/calinvite/internal/calendar"
	"github.com/calinvite/calinvite/internal/gmail"
	"github.com/calinvite/calinvite/internal/google"
	"github.com/calinvite/calinvite/internal/instrumentation"
	"github.com/calinvite/calinvite/internal/logging"
)

// Request is the transient, per-call input of the pipeline. It is never
// persisted.
type Request struct {
	UserEmail    string
	Title        string
	Content      string
	Start        time.Time
	End          time.Time
	Participants []string
}

// Result reports the outcome of a successful pipeline run. Sent and Failed
// count notification attempts; their sum always equals the participant
// count.
type Result struct {
	EventLink string
	MeetURL   string
	Sent      int
	Failed    int
}

// Authorizer resolves a user email to a credential handle.
type Authorizer interface {
	Authorize(ctx context.Context, userEmail string) (*google.Handle, error)
}

// EventCreator inserts one event and returns its canonical links.
type EventCreator interface {
	CreateEvent(input calendar.EventInput) (*calendar.CreatedEvent, error)
}

// InviteSender sends one invitation email.
type InviteSender interface {
	SendInvite(from, to, subject, htmlBody string) (string, error)
}

// Service sequences the pipeline. Calendar and Gmail clients are built per
// request from the handle; no provider client is shared across requests.
type Service struct {
	authorizer Authorizer
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	// Client construction is indirected so tests can substitute fakes.
	newEventCreator func(ctx context.Context, handle *google.Handle) (EventCreator, error)
	newInviteSender func(ctx context.Context, handle *google.Handle) (InviteSender, error)
}

// NewService creates the pipeline service. metrics may be nil.
func NewService(authorizer Authorizer, metrics *instrumentation.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Service{
		authorizer: authorizer,
		logger:     logger,
		metrics:    metrics,
		newEventCreator: func(ctx context.Context, handle *google.Handle) (EventCreator, error) {
			return calendar.NewClient(ctx, handle)
		},
		newInviteSender: func(ctx context.Context, handle *google.Handle) (InviteSender, error) {
			return gmail.NewClient(ctx, handle)
		},
	}
}

// CreateEventAndNotify runs the full pipeline for one request: validate,
// authorize, create the event, then notify every participant in input order.
//
// Notification failures do not fail the call; they are logged and reflected
// in Result.Failed. Any earlier failure aborts with a typed error.
func (s *Service) CreateEventAndNotify(ctx context.Context, req Request) (*Result, error) {
	ctx, span := instrumentation.StartPipelineSpan(ctx, "create_event_and_notify",
		attribute.String(instrumentation.SpanAttrUser, logging.AnonymizeEmail(req.UserEmail)),
		attribute.Int(instrumentation.SpanAttrParticipants, len(req.Participants)))
	defer span.End()

	result, err := s.createAndNotify(ctx, req)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return result, nil
}

func (s *Service) createAndNotify(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	handle, err := s.authorizer.Authorize(ctx, req.UserEmail)
	if err != nil {
		s.metrics.RecordOAuthAuth(ctx, instrumentation.StatusError)
		return nil, &AuthenticationError{Err: err}
	}
	s.metrics.RecordOAuthAuth(ctx, instrumentation.StatusSuccess)

	created, err := s.createEvent(ctx, handle, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		logging.UserHash(req.UserEmail),
		slog.String("event_id", created.ID),
		slog.Int("participants", len(req.Participants)))

	result := &Result{
		EventLink: created.HTMLLink,
		MeetURL:   created.HangoutLink,
	}
	s.notify(ctx, handle, req, created, result)

	return result, nil
}

func (s *Service) createEvent(ctx context.Context, handle *google.Handle, req Request) (*calendar.CreatedEvent, error) {
	creator, err := s.newEventCreator(ctx, handle)
	if err != nil {
		return nil, &EventCreationError{Err: err}
	}

	_, apiSpan := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, "create")
	defer apiSpan.End()

	start := time.Now()
	created, err := creator.CreateEvent(calendar.EventInput{
		Summary:     req.Title,
		Description: req.Content,
		Start:       req.Start,
		End:         req.End,
		Attendees:   req.Participants,
	})
	s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, "create",
		statusOf(err), time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(apiSpan, err)
		return nil, &EventCreationError{Err: err}
	}

	apiSpan.SetAttributes(attribute.String(instrumentation.SpanAttrEventID, created.ID))
	instrumentation.SetSpanSuccess(apiSpan)
	return created, nil
}

// notify sends one invitation per participant, sequentially and in input
// order. A failed send is logged and the loop moves on; one bad address
// never fails the request once the event exists.
func (s *Service) notify(ctx context.Context, handle *google.Handle, req Request, created *calendar.CreatedEvent, result *Result) {
	sender, err := s.newInviteSender(ctx, handle)
	if err != nil {
		s.logger.Error("failed to create mail client, skipping all notifications",
			logging.UserHash(req.UserEmail), logging.Err(err))
		result.Failed = len(req.Participants)
		return
	}

	subject := req.Title
	body := renderInviteBody(req, created)

	for _, participant := range req.Participants {
		_, sendSpan := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, "send",
			attribute.String(instrumentation.SpanAttrRecipient, logging.AnonymizeEmail(participant)))

		start := time.Now()
		id, err := sender.SendInvite(req.UserEmail, participant, subject, body)
		s.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceGmail, "send",
			statusOf(err), time.Since(start))
		if err != nil {
			notifErr := &NotificationError{Recipient: participant, Err: err}
			instrumentation.SetSpanError(sendSpan, notifErr)
			sendSpan.End()
			s.logger.Warn("invitation send failed, continuing",
				logging.UserHash(req.UserEmail),
				logging.RecipientHash(participant),
				logging.Err(notifErr))
			s.metrics.RecordInviteSent(ctx, instrumentation.StatusError)
			result.Failed++
			continue
		}

		instrumentation.SetSpanSuccess(sendSpan)
		sendSpan.End()
		s.logger.Debug("invitation sent",
			logging.RecipientHash(participant),
			slog.String("message_id", id))
		s.metrics.RecordInviteSent(ctx, instrumentation.StatusSuccess)
		result.Sent++
	}
}

// inviteBodyTmpl mirrors the invitation layout users already receive; the
// field values are HTML-escaped by the template engine.
var inviteBodyTmpl = template.Must(template.New("invite").Parse(strings.TrimSpace(`
<p>You have been invited to the event <strong>{{.Title}}</strong>.</p>
<p><strong>Event Details:</strong><br>{{.Content}}</p>
<p>Please join the meeting at <strong>{{.Start}}</strong></p>
<p><strong>Google Meet Link:</strong> <a href="{{.MeetURL}}">{{.MeetURL}}</a></p>
<p><strong>Event Link:</strong> <a href="{{.EventLink}}">{{.EventLink}}</a></p>
`)))

func renderInviteBody(req Request, created *calendar.CreatedEvent) string {
	var b strings.Builder
	err := inviteBodyTmpl.Execute(&b, struct {
		Title     string
		Content   string
		Start     string
		MeetURL   string
		EventLink string
	}{
		Title:     req.Title,
		Content:   req.Content,
		Start:     req.Start.UTC().Format(time.RFC3339),
		MeetURL:   created.HangoutLink,
		EventLink: created.HTMLLink,
	})
	if err != nil {
		// The template is static and the data is plain strings; this cannot
		// fail at runtime, but fall back to something usable anyway.
		return fmt.Sprintf("<p>You have been invited to the event %s.</p>", template.HTMLEscapeString(req.Title))
	}
	return b.String()
}

func validate(req Request) error {
	if strings.TrimSpace(req.UserEmail) == "" {
		return &ValidationError{Field: "userEmail", Reason: "is required"}
	}
	if req.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return &ValidationError{Field: "startTime/endTime", Reason: "are required"}
	}
	if !req.Start.Before(req.End) {
		return &ValidationError{Field: "startTime", Reason: "must be before endTime"}
	}
	if len(req.Participants) == 0 {
		return &ValidationError{Field: "participants", Reason: "must not be empty"}
	}
	for _, p := range req.Participants {
		if _, err := mail.ParseAddress(p); err != nil {
			return &ValidationError{Field: "participants", Reason: fmt.Sprintf("contains invalid email %q", p)}
		}
	}
	return nil
}

func statusOf(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}
