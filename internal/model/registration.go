package model

import "time"

// Registration links a user to an event they joined.
type Registration struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"event_id"`
	UserID       int64     `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RegistrationWithEvent is a registration together with the event it is for.
type RegistrationWithEvent struct {
	Registration
	Event Event `json:"event"`
}
