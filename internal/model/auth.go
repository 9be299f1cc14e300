package model

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID  int64
	Email   string
	Role    Role
	TokenID string
}

// IsOrganizer checks if the authenticated user has the organizer role.
func (a *AuthContext) IsOrganizer() bool {
	return a.Role == RoleOrganizer
}
