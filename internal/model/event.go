// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// NewEvent holds caller-supplied fields for an event.
type NewEvent struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Capacity    int // 0 means unlimited
	OrganizerID int64
}

// Event is a stored event record.
type Event struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Date         time.Time `json:"date"`
	Location     string    `json:"location,omitempty"`
	Capacity     int       `json:"capacity"`
	OrganizerID  int64     `json:"organizer_id"`
	Participants []int64   `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventUpdate is a partial update of an event's mutable fields.
// Nil fields are left unchanged. ID, Participants and CreatedAt are not
// part of the patch and can never be overwritten through it.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Capacity    *int
}

// IsEmpty returns true if the update sets no field.
func (u EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Date == nil &&
		u.Location == nil && u.Capacity == nil
}

// Apply merges the set fields of the update onto the event.
func (u EventUpdate) Apply(e *Event) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() Event {
	c := *e
	c.Participants = slices.Clone(e.Participants)
	if c.Participants == nil {
		c.Participants = []int64{}
	}
	return c
}

// HasParticipant checks if the user id is in the participant list.
func (e *Event) HasParticipant(userID int64) bool {
	return slices.Contains(e.Participants, userID)
}

// IsOwnedBy returns true if the user organizes the event.
func (e *Event) IsOwnedBy(userID int64) bool {
	return e.OrganizerID == userID
}

// IsFull reports whether the event has reached capacity given the number
// of registrations. Capacity 0 never fills.
func (e *Event) IsFull(registered int) bool {
	return e.Capacity > 0 && registered >= e.Capacity
}

// EventWithParticipants is an event together with the public records of
// its participants.
type EventWithParticipants struct {
	Event
	ParticipantDetails []PublicUser `json:"participant_details"`
}
