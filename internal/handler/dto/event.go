package dto

import (
	"time"

	"github.com/eventhub/eventhub/internal/model"
)

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=5000"`
	Date        *time.Time `json:"date" validate:"required"`
	Location    string     `json:"location,omitempty" validate:"max=200"`
	Capacity    int        `json:"capacity,omitempty" validate:"gte=0"`
}

// UpdateEventRequest is the body of PUT /events/{id}. Absent fields are
// left unchanged. Fields such as id or participants are not part of the
// request and are ignored when sent.
type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,gte=0"`
}

// ToUpdate converts the request to a model patch.
func (r UpdateEventRequest) ToUpdate() model.EventUpdate {
	return model.EventUpdate{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Location:    r.Location,
		Capacity:    r.Capacity,
	}
}
