package middleware

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/fitstack/fitness-platform/internal/auth"
	"github.com/fitstack/fitness-platform/internal/authz"
)

// RequireCanViewWorkout allows the workout's owner through, and anyone else
// only when the authorization engine grants workout:read_all.
func RequireCanViewWorkout(db *sqlx.DB, engine *authz.Engine) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			idStr := chi.URLParam(r, "id")
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				http.Error(w, "invalid workout id", http.StatusBadRequest)
				return
			}

			var ownerID int64
			err = db.GetContext(r.Context(), &ownerID, "SELECT user_id FROM workouts WHERE id=$1", id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					http.Error(w, "not found", http.StatusNotFound)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if ownerID != user.ID && !engine.CheckPermission(user.ID, "workout", "read_all") {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
