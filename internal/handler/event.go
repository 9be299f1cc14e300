package handler

import (
	"log/slog"
	"net/http"

	"github.com/eventhub/eventhub/internal/handler/dto"
	"github.com/eventhub/eventhub/internal/service"
)

// EventHandler handles HTTP requests for event operations.
type EventHandler struct {
	svc    *service.EventService
	logger *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.OK(h.svc.List(r.Context())))
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	event, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(event))
}

// Create handles POST /events.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.svc.Create(r.Context(), caller.UserID, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        *req.Date,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.Response{
		Success: true,
		Message: "Event created successfully",
		Data:    event,
	})
}

// Update handles PUT /events/{id}.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.svc.Update(r.Context(), caller.UserID, id, req.ToUpdate())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Event updated successfully",
		Data:    event,
	})
}

// Delete handles DELETE /events/{id}.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller.UserID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Message("Event deleted successfully"))
}

// Register handles POST /events/{id}/register.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	reg, err := h.svc.Register(r.Context(), id, caller.UserID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.Response{
		Success: true,
		Message: "Registered for event successfully",
		Data:    reg,
	})
}

// Registrations handles GET /events/{id}/registrations.
func (h *EventHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	regs, err := h.svc.Registrations(r.Context(), caller.UserID, id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(regs))
}

// MyRegistrations handles GET /events/my-registrations.
func (h *EventHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(h.svc.MyRegistrations(r.Context(), caller.UserID)))
}

// MyEvents handles GET /events/my-events.
func (h *EventHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.OK(h.svc.MyEvents(r.Context(), caller.UserID)))
}
