// Package store provides the in-memory data layer for users, events and
// registrations.
//
// A Store is constructed once at startup and passed to whatever needs it.
// All methods are safe for concurrent use and return copies, so callers can
// never mutate stored state through a returned value.
package store

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/eventhub/eventhub/internal/model"
)

// Common errors for store operations.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrAlreadyRegistered = errors.New("user already registered for event")
	ErrEventFull         = errors.New("event is full")
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds users, events and registrations in insertion order.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users         []model.User
	events        []model.Event
	registrations []model.Registration

	nextUserID         int64
	nextEventID        int64
	nextRegistrationID int64
}

// New creates an empty Store. Ids for each collection start at 1.
func New(opts ...Option) *Store {
	s := &Store{
		now:                time.Now,
		users:              make([]model.User, 0),
		events:             make([]model.Event, 0),
		registrations:      make([]model.Registration, 0),
		nextUserID:         1,
		nextEventID:        1,
		nextRegistrationID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats is a point-in-time count of each collection.
type Stats struct {
	Users         int `json:"users"`
	Events        int `json:"events"`
	Registrations int `json:"registrations"`
}

// Stats returns the current collection sizes.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Users:         len(s.users),
		Events:        len(s.events),
		Registrations: len(s.registrations),
	}
}

// AddUser stores a new user and returns the full record, password included.
// Email uniqueness is not checked here.
func (s *Store) AddUser(in model.NewUser) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := model.User{
		ID:        s.nextUserID,
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      in.Role,
		CreatedAt: s.now(),
	}
	s.nextUserID++
	s.users = append(s.users, user)
	return user
}

// FindUserByEmail returns the first user with the given email.
func (s *Store) FindUserByEmail(email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrUserNotFound
}

// FindUserByID returns the user with the given id.
func (s *Store) FindUserByID(id int64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.userByID(id); u != nil {
		return *u, nil
	}
	return model.User{}, ErrUserNotFound
}

// AllUsers returns every user as a public projection.
func (s *Store) AllUsers() []model.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.PublicUser, 0, len(s.users))
	for i := range s.users {
		out = append(out, s.users[i].Public())
	}
	return out
}

// AddEvent stores a new event with an empty participant list.
func (s *Store) AddEvent(in model.NewEvent) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	event := model.Event{
		ID:           s.nextEventID,
		Title:        in.Title,
		Description:  in.Description,
		Date:         in.Date,
		Location:     in.Location,
		Capacity:     in.Capacity,
		OrganizerID:  in.OrganizerID,
		Participants: []int64{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.nextEventID++
	s.events = append(s.events, event)
	return event.Clone()
}

// FindEventByID returns the event with the given id.
func (s *Store) FindEventByID(id int64) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.eventIndex(id); idx >= 0 {
		return s.events[idx].Clone(), nil
	}
	return model.Event{}, ErrEventNotFound
}

// AllEvents returns a copy of every event in insertion order.
func (s *Store) AllEvents() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0, len(s.events))
	for i := range s.events {
		out = append(out, s.events[i].Clone())
	}
	return out
}

// EventsByOrganizer returns the events created by the given user.
func (s *Store) EventsByOrganizer(organizerID int64) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, 0)
	for i := range s.events {
		if s.events[i].OrganizerID == organizerID {
			out = append(out, s.events[i].Clone())
		}
	}
	return out
}

// UpdateEvent merges the update onto the event and refreshes UpdatedAt.
// ID, Participants and CreatedAt are preserved.
func (s *Store) UpdateEvent(id int64, update model.EventUpdate) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.eventIndex(id)
	if idx < 0 {
		return model.Event{}, ErrEventNotFound
	}

	event := &s.events[idx]
	update.Apply(event)
	event.UpdatedAt = s.now()
	return event.Clone(), nil
}

// DeleteEvent removes the event and every registration for it.
// Nothing changes if the event does not exist.
func (s *Store) DeleteEvent(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.eventIndex(id)
	if idx < 0 {
		return ErrEventNotFound
	}

	s.events = slices.Delete(s.events, idx, idx+1)
	s.registrations = slices.DeleteFunc(s.registrations, func(r model.Registration) bool {
		return r.EventID == id
	})
	return nil
}

// AddRegistration registers the user for the event and records the user as
// a participant. A second call for the same pair returns
// ErrAlreadyRegistered and stores nothing. A missing event returns
// ErrEventNotFound and stores nothing, so participants always mirror
// registrations. An event with a capacity rejects registrations once full
// with ErrEventFull.
func (s *Store) AddRegistration(eventID, userID int64) (model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRegistered(eventID, userID) {
		return model.Registration{}, ErrAlreadyRegistered
	}

	idx := s.eventIndex(eventID)
	if idx < 0 {
		return model.Registration{}, ErrEventNotFound
	}
	event := &s.events[idx]
	if event.IsFull(s.countRegistrations(eventID)) {
		return model.Registration{}, ErrEventFull
	}

	reg := model.Registration{
		ID:           s.nextRegistrationID,
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: s.now(),
	}
	s.nextRegistrationID++
	s.registrations = append(s.registrations, reg)

	if !event.HasParticipant(userID) {
		event.Participants = append(event.Participants, userID)
	}

	return reg, nil
}

// UserRegistrations returns the registrations of a user.
func (s *Store) UserRegistrations(userID int64) []model.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterRegistrations(func(r model.Registration) bool {
		return r.UserID == userID
	})
}

// EventRegistrations returns the registrations for an event.
func (s *Store) EventRegistrations(eventID int64) []model.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filterRegistrations(func(r model.Registration) bool {
		return r.EventID == eventID
	})
}

// CountEventRegistrations returns how many users registered for an event.
// AddRegistration checks capacity against the same count.
func (s *Store) CountEventRegistrations(eventID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.countRegistrations(eventID)
}

// IsRegistered checks if the user is registered for the event.
func (s *Store) IsRegistered(eventID, userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.isRegistered(eventID, userID)
}

// EventWithParticipants returns the event with the public records of its
// participants, in participant order. Ids that no longer resolve to a user
// are skipped.
func (s *Store) EventWithParticipants(eventID int64) (model.EventWithParticipants, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.eventIndex(eventID)
	if idx < 0 {
		return model.EventWithParticipants{}, ErrEventNotFound
	}

	event := s.events[idx].Clone()
	details := make([]model.PublicUser, 0, len(event.Participants))
	for _, userID := range event.Participants {
		if u := s.userByID(userID); u != nil {
			details = append(details, u.Public())
		}
	}

	return model.EventWithParticipants{
		Event:              event,
		ParticipantDetails: details,
	}, nil
}

// The helpers below expect the caller to hold s.mu.

func (s *Store) userByID(id int64) *model.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Store) eventIndex(id int64) int {
	return slices.IndexFunc(s.events, func(e model.Event) bool {
		return e.ID == id
	})
}

func (s *Store) isRegistered(eventID, userID int64) bool {
	return slices.ContainsFunc(s.registrations, func(r model.Registration) bool {
		return r.EventID == eventID && r.UserID == userID
	})
}

func (s *Store) countRegistrations(eventID int64) int {
	n := 0
	for _, r := range s.registrations {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

func (s *Store) filterRegistrations(keep func(model.Registration) bool) []model.Registration {
	out := make([]model.Registration, 0)
	for _, r := range s.registrations {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
