package middleware

import (
	"log/slog"
	"net/http"

	"github.com/fitstack/fitness-platform/internal/auth"
	"github.com/fitstack/fitness-platform/internal/authz"
)

// RequirePermission gates a route on the authorization engine's decision
// for a (resource, action) pair. Wildcard-holding users pass; denials are
// logged with the engine's reason.
func RequirePermission(engine *authz.Engine, logger *slog.Logger, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			decision := engine.Authorize(authz.AccessRequest{
				UserID:   user.ID,
				Resource: resource,
				Action:   action,
			})
			if !decision.Allowed {
				logger.Warn("access denied",
					"user_id", user.ID,
					"resource", resource,
					"action", action,
					"reason", decision.Reason)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
