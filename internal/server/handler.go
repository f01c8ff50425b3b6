package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calinvite/calinvite/internal/invite"
	"github.com/calinvite/calinvite/internal/logging"
)

// createEventRequest is the JSON body of POST /calendar/create-event.
type createEventRequest struct {
	UserEmail    string   `json:"userEmail"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Participants []string `json:"participants"`
}

// createEventResponse is the JSON body returned on success.
type createEventResponse struct {
	Message   string `json:"message"`
	EventLink string `json:"eventLink"`
	MeetURL   string `json:"meetUrl"`
}

// errorResponse is the JSON body returned on failure. Error carries the
// underlying cause and is omitted for client errors.
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var body createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Invalid request body",
		})
		return
	}

	req, err := body.toInviteRequest()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: err.Error(),
		})
		return
	}

	result, err := s.invites.CreateEventAndNotify(r.Context(), req)
	if err != nil {
		s.writeInviteError(w, err)
		return
	}

	s.logger.Info("create-event request completed",
		logging.UserHash(req.UserEmail),
		"sent", result.Sent,
		"failed", result.Failed,
	)

	writeJSON(w, http.StatusOK, createEventResponse{
		Message:   "Event created and emails sent successfully",
		EventLink: result.EventLink,
		MeetURL:   result.MeetURL,
	})
}

// toInviteRequest validates the wire format and converts it to the
// pipeline's request type. Times must be RFC 3339.
func (b createEventRequest) toInviteRequest() (invite.Request, error) {
	req := invite.Request{
		UserEmail:    b.UserEmail,
		Title:        b.Title,
		Content:      b.Content,
		Participants: b.Participants,
	}

	if b.UserEmail == "" {
		return invite.Request{}, errors.New("userEmail is required")
	}

	if b.StartTime != "" {
		start, err := time.Parse(time.RFC3339, b.StartTime)
		if err != nil {
			return invite.Request{}, fmt.Errorf("startTime must be a valid RFC 3339 timestamp")
		}
		req.Start = start
	}
	if b.EndTime != "" {
		end, err := time.Parse(time.RFC3339, b.EndTime)
		if err != nil {
			return invite.Request{}, fmt.Errorf("endTime must be a valid RFC 3339 timestamp")
		}
		req.End = end
	}

	return req, nil
}

// writeInviteError maps pipeline errors onto HTTP status codes. Validation
// failures are client errors; authorization and event creation failures
// surface as internal errors with the cause attached.
func (s *Server) writeInviteError(w http.ResponseWriter, err error) {
	var verr *invite.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: verr.Error(),
		})
		return
	}

	var aerr *invite.AuthenticationError
	if errors.As(err, &aerr) {
		s.logger.Error("authorization failed", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error retrieving access token",
			Error:   aerr.Unwrap().Error(),
		})
		return
	}

	var eerr *invite.EventCreationError
	if errors.As(err, &eerr) {
		s.logger.Error("event creation failed", logging.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Message: "Error creating event",
			Error:   eerr.Unwrap().Error(),
		})
		return
	}

	s.logger.Error("create-event request failed", logging.Err(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message: "Internal server error",
		Error:   err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
