package workout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/fitstack/fitness-platform/internal"
	"github.com/fitstack/fitness-platform/internal/auth"
	"github.com/fitstack/fitness-platform/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

func (h *Handler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var dto CreateWorkoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Service.Create(user.ID, dto)
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			h.HandleError(w, internal.NewValidationError(verr.Msg, internal.ErrCodeValidationFailed))
			return
		}
		h.Logger.Error("failed to create workout", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := h.workoutID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid workout id")
		return
	}

	found, err := h.Service.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "Workout not found")
			return
		}
		h.Logger.Error("failed to get workout", "error", err, "workout_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, found)
}

func (h *Handler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	workouts, err := h.Service.ListByUser(user.ID, limit, offset)
	if err != nil {
		h.Logger.Error("failed to list workouts", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{
		"workouts": workouts,
		"count":    len(workouts),
	})
}

func (h *Handler) UpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := h.workoutID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid workout id")
		return
	}

	var dto UpdateWorkoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.Service.Update(id, dto)
	if err != nil {
		var verr ValidationError
		switch {
		case errors.As(err, &verr):
			h.HandleError(w, internal.NewValidationError(verr.Msg, internal.ErrCodeValidationFailed))
		case errors.Is(err, ErrNotFound):
			h.WriteError(w, http.StatusNotFound, "Workout not found")
		default:
			h.Logger.Error("failed to update workout", "error", err, "workout_id", id)
			h.HandleServiceError(w, err)
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := h.workoutID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid workout id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "Workout not found")
			return
		}
		h.Logger.Error("failed to delete workout", "error", err, "workout_id", id)
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) workoutID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
