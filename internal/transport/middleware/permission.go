package middleware

import (
	"net/http"

	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	"github.com/frahmantamala/expense-portal/internal/transport"
)

// RequireRole lets the request through only for a viewer holding one of roles.
// Refusals carry an error notification so htmx callers show a toast.
func RequireRole(h *transport.BaseHandler, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer, ok := auth.ViewerFromContext(r.Context())
			if !ok {
				h.Notify(w, []notify.Notification{notify.Error("You must be logged in.")})
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !viewer.HasRole(roles...) {
				h.Logger.Warn("Access denied: viewer lacks required role",
					"viewer_id", viewer.ID,
					"viewer_role", viewer.Role,
					"required_roles", roles)
				h.Notify(w, []notify.Notification{notify.Error("You are not allowed to do that.")})
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireApprover guards the approve/reject routes.
func RequireApprover(h *transport.BaseHandler) func(http.Handler) http.Handler {
	return RequireRole(h, user.RoleManager, user.RoleAdmin)
}
