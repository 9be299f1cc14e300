package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eventhub/eventhub/internal/activity"
	"github.com/eventhub/eventhub/internal/metrics"
	"github.com/eventhub/eventhub/internal/model"
	"github.com/eventhub/eventhub/internal/store"
)

// EventService handles event business logic.
type EventService struct {
	store    *store.Store
	metrics  metrics.Recorder
	activity activity.Publisher
	logger   *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(st *store.Store, recorder metrics.Recorder, publisher activity.Publisher, logger *slog.Logger) *EventService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = activity.NewNoop()
	}
	return &EventService{
		store:    st,
		metrics:  recorder,
		activity: publisher,
		logger:   logger.With("component", "service.event"),
	}
}

// CreateEventInput defines input for creating an event.
type CreateEventInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int
}

// Create stores a new event owned by organizerID.
func (s *EventService) Create(ctx context.Context, organizerID int64, input CreateEventInput) (model.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Event{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Capacity < 0 {
		return model.Event{}, fmt.Errorf("%w: capacity must not be negative", ErrInvalidInput)
	}

	event := s.store.AddEvent(model.NewEvent{
		Title:       title,
		Description: input.Description,
		Date:        input.Date,
		Location:    input.Location,
		Capacity:    input.Capacity,
		OrganizerID: organizerID,
	})

	s.metrics.IncEventCreated()
	s.activity.PublishAsync(activity.NewMessage(activity.KindEventCreated, organizerID, event.ID))
	s.logger.InfoContext(ctx, "event created",
		"event_id", event.ID,
		"organizer_id", organizerID,
	)

	return event, nil
}

// List returns every event.
func (s *EventService) List(_ context.Context) []model.Event {
	return s.store.AllEvents()
}

// Get returns an event with its participants.
func (s *EventService) Get(_ context.Context, id int64) (model.EventWithParticipants, error) {
	event, err := s.store.EventWithParticipants(id)
	if err != nil {
		return model.EventWithParticipants{}, mapStoreError(err)
	}
	return event, nil
}

// Update applies a partial update. Only the organizer may update.
func (s *EventService) Update(ctx context.Context, actorID, id int64, update model.EventUpdate) (model.Event, error) {
	if update.IsEmpty() {
		return model.Event{}, fmt.Errorf("%w: no updatable fields given", ErrInvalidInput)
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return model.Event{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		update.Title = &title
	}
	if update.Capacity != nil && *update.Capacity < 0 {
		return model.Event{}, fmt.Errorf("%w: capacity must not be negative", ErrInvalidInput)
	}

	if _, err := s.ownedEvent(actorID, id); err != nil {
		return model.Event{}, err
	}

	event, err := s.store.UpdateEvent(id, update)
	if err != nil {
		return model.Event{}, mapStoreError(err)
	}

	s.metrics.IncEventUpdated()
	s.activity.PublishAsync(activity.NewMessage(activity.KindEventUpdated, actorID, id))
	s.logger.InfoContext(ctx, "event updated", "event_id", id)

	return event, nil
}

// Delete removes an event and its registrations. Only the organizer may
// delete.
func (s *EventService) Delete(ctx context.Context, actorID, id int64) error {
	if _, err := s.ownedEvent(actorID, id); err != nil {
		return err
	}

	if err := s.store.DeleteEvent(id); err != nil {
		return mapStoreError(err)
	}

	s.metrics.IncEventDeleted()
	s.activity.PublishAsync(activity.NewMessage(activity.KindEventDeleted, actorID, id))
	s.logger.InfoContext(ctx, "event deleted", "event_id", id)

	return nil
}

// Register signs the user up for the event.
func (s *EventService) Register(ctx context.Context, eventID, userID int64) (model.Registration, error) {
	if _, err := s.store.FindUserByID(userID); err != nil {
		return model.Registration{}, mapStoreError(err)
	}

	reg, err := s.store.AddRegistration(eventID, userID)
	if err != nil {
		s.metrics.IncRegistration(registrationOutcome(err))
		return model.Registration{}, mapStoreError(err)
	}

	s.metrics.IncRegistration(metrics.RegistrationCreated)
	s.activity.PublishAsync(activity.NewMessage(activity.KindRegistrationCreated, userID, eventID))
	s.logger.InfoContext(ctx, "registration created",
		"event_id", eventID,
		"user_id", userID,
		"registration_id", reg.ID,
	)

	return reg, nil
}

// Registrations lists the registrations for an event. Only the organizer
// may see them.
func (s *EventService) Registrations(_ context.Context, actorID, eventID int64) ([]model.Registration, error) {
	if _, err := s.ownedEvent(actorID, eventID); err != nil {
		return nil, err
	}
	return s.store.EventRegistrations(eventID), nil
}

// MyRegistrations returns the user's registrations with their events.
func (s *EventService) MyRegistrations(_ context.Context, userID int64) []model.RegistrationWithEvent {
	regs := s.store.UserRegistrations(userID)

	out := make([]model.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		event, err := s.store.FindEventByID(reg.EventID)
		if err != nil {
			// Deleted between the two reads.
			continue
		}
		out = append(out, model.RegistrationWithEvent{Registration: reg, Event: event})
	}
	return out
}

// MyEvents returns the events the user organizes.
func (s *EventService) MyEvents(_ context.Context, organizerID int64) []model.Event {
	return s.store.EventsByOrganizer(organizerID)
}

func (s *EventService) ownedEvent(actorID, id int64) (model.Event, error) {
	event, err := s.store.FindEventByID(id)
	if err != nil {
		return model.Event{}, mapStoreError(err)
	}
	if !event.IsOwnedBy(actorID) {
		return model.Event{}, ErrNotEventOwner
	}
	return event, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrAlreadyRegistered):
		return ErrAlreadyRegistered
	case errors.Is(err, store.ErrEventFull):
		return ErrEventFull
	default:
		return fmt.Errorf("store: %w", err)
	}
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, store.ErrAlreadyRegistered):
		return metrics.RegistrationDuplicate
	case errors.Is(err, store.ErrEventFull):
		return metrics.RegistrationFull
	default:
		return metrics.RegistrationNoEvent
	}
}
