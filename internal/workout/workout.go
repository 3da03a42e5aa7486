package workout

import (
	"errors"
	"time"

	datamodel "github.com/fitstack/fitness-platform/internal/core/datamodel/workout"
)

var ErrNotFound = errors.New("workout not found")

type Workout struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Notes       string     `json:"notes,omitempty"`
	DurationMin int        `json:"duration_min"`
	PerformedAt *time.Time `json:"performed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Repository is the persistence contract for workouts.
type Repository interface {
	Create(w *Workout) error
	GetByID(id int64) (*Workout, error)
	ListByUser(userID int64, limit, offset int) ([]Workout, error)
	Update(w *Workout) error
	Delete(id int64) error
}

func FromDataModel(dm *datamodel.Workout) *Workout {
	return &Workout{
		ID:          dm.ID,
		UserID:      dm.UserID,
		Name:        dm.Name,
		Notes:       dm.Notes,
		DurationMin: dm.DurationMin,
		PerformedAt: dm.PerformedAt,
		CreatedAt:   dm.CreatedAt,
		UpdatedAt:   dm.UpdatedAt,
	}
}

func (w *Workout) ToDataModel() *datamodel.Workout {
	return &datamodel.Workout{
		ID:          w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		Notes:       w.Notes,
		DurationMin: w.DurationMin,
		PerformedAt: w.PerformedAt,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}
