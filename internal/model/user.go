package model

import "time"

// Role determines what a user may do.
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleAttendee  Role = "attendee"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleOrganizer || r == RoleAttendee
}

// NewUser holds caller-supplied fields for a user.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// User is a stored user record.
// Password carries whatever the caller stored (a PHC hash in practice).
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // Never serialize
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser is the projection of a user that is safe to expose.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Public converts a User to its PublicUser projection.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
