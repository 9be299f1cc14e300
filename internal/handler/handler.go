// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eventhub/eventhub/internal/auth"
	"github.com/eventhub/eventhub/internal/handler/dto"
	"github.com/eventhub/eventhub/internal/model"
	"github.com/eventhub/eventhub/internal/service"
)

// Version is reported by the index endpoint.
const Version = "1.0.0"

// endpoints is the index served at GET /.
var endpoints = map[string]string{
	"register":         "POST /register",
	"login":            "POST /login",
	"profile":          "GET /profile",
	"users":            "GET /users (organizers)",
	"events":           "GET /events",
	"event":            "GET /events/{id}",
	"create_event":     "POST /events (organizers)",
	"update_event":     "PUT /events/{id} (owner)",
	"delete_event":     "DELETE /events/{id} (owner)",
	"register_event":   "POST /events/{id}/register",
	"registrations":    "GET /events/{id}/registrations (owner)",
	"my_registrations": "GET /events/my-registrations",
	"my_events":        "GET /events/my-events (organizers)",
}

// Handler serves the index and fallback routes.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index describes the service.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Event management API",
		Data: map[string]any{
			"version":   Version,
			"endpoints": endpoints,
		},
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.Fail(code, message))
}

// decodeAndValidate reads a JSON body into req and checks its validate
// tags. It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is required")
		default:
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		}
		return false
	}

	if fields := dto.Validate(r.Context(), req); fields != nil {
		writeJSON(w, http.StatusBadRequest, dto.Fail("VALIDATION_ERROR", "Request validation failed", fields...))
		return false
	}
	return true
}

// parseID reads a positive integer URL parameter. Ids are parsed once here
// and passed on as int64.
func parseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// currentUser returns the authenticated caller. Routes using it sit behind
// the auth middleware, so a missing context is answered with 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.AuthContext, bool) {
	ac := auth.AuthFromContext(r.Context())
	if ac == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return nil, false
	}
	return ac, true
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "EVENT_NOT_FOUND", "Event not found")
	case errors.Is(err, service.ErrNotEventOwner):
		writeError(w, http.StatusForbidden, "NOT_EVENT_OWNER", "Only the event organizer can do this")
	case errors.Is(err, service.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "ALREADY_REGISTERED", "Already registered for this event")
	case errors.Is(err, service.ErrEventFull):
		writeError(w, http.StatusConflict, "EVENT_FULL", "Event is full")
	default:
		logger.ErrorContext(r.Context(), "internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
