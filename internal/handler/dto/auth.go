package dto

import "github.com/eventhub/eventhub/internal/model"

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Email    string     `json:"email" validate:"required,email,max=254"`
	Password string     `json:"password" validate:"required,min=8,max=128"`
	Role     model.Role `json:"role,omitempty" validate:"omitempty,oneof=organizer attendee"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
