package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/eventhub/eventhub/internal/auth"
	"github.com/eventhub/eventhub/internal/model"
)

// RequireRole returns middleware that enforces role requirements.
// Must be applied after Auth middleware.
// If multiple roles are provided, having ANY of them is sufficient.
// With no roles every authenticated caller is rejected.
func RequireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = string(role)
	}
	message := "Insufficient permissions"
	if len(names) > 0 {
		message = fmt.Sprintf("Insufficient permissions. Required role: %s", strings.Join(names, " or "))
	}

	return requireAuthContext(func(ac *model.AuthContext) bool {
		return slices.Contains(allowed, ac.Role)
	}, message)
}

// RequireOrganizer is a convenience middleware for organizer-only routes.
func RequireOrganizer() func(http.Handler) http.Handler {
	return requireAuthContext((*model.AuthContext).IsOrganizer,
		"Insufficient permissions. Required role: "+string(model.RoleOrganizer))
}

// requireAuthContext answers 401 without an auth context and 403 when
// allow rejects it.
func requireAuthContext(allow func(*model.AuthContext) bool, forbidden string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeRoleError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}

			if !allow(authCtx) {
				writeRoleError(w, http.StatusForbidden, "FORBIDDEN", forbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeRoleError writes a role-related error response.
func writeRoleError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(fmt.Sprintf(`{"success":false,"error":{"code":"%s","message":"%s"}}`, code, message)))
}
