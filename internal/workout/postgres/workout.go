package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	datamodel "github.com/fitstack/fitness-platform/internal/core/datamodel/workout"
	"github.com/fitstack/fitness-platform/internal/workout"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ workout.Repository = (*Repository)(nil)

func (r *Repository) Create(w *workout.Workout) error {
	dm := w.ToDataModel()
	if err := r.db.Create(dm).Error; err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}
	w.ID = dm.ID
	return nil
}

func (r *Repository) GetByID(id int64) (*workout.Workout, error) {
	var dm datamodel.Workout
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workout.ErrNotFound
		}
		return nil, fmt.Errorf("query workout: %w", err)
	}
	return workout.FromDataModel(&dm), nil
}

func (r *Repository) ListByUser(userID int64, limit, offset int) ([]workout.Workout, error) {
	var dms []datamodel.Workout
	err := r.db.
		Where("user_id = ?", userID).
		Order("performed_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	out := make([]workout.Workout, 0, len(dms))
	for i := range dms {
		out = append(out, *workout.FromDataModel(&dms[i]))
	}
	return out, nil
}

func (r *Repository) Update(w *workout.Workout) error {
	result := r.db.Model(&datamodel.Workout{}).
		Where("id = ?", w.ID).
		Updates(map[string]any{
			"name":         w.Name,
			"notes":        w.Notes,
			"duration_min": w.DurationMin,
			"performed_at": w.PerformedAt,
			"updated_at":   w.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update workout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workout.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(id int64) error {
	result := r.db.Where("id = ?", id).Delete(&datamodel.Workout{})
	if result.Error != nil {
		return fmt.Errorf("delete workout: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return workout.ErrNotFound
	}
	return nil
}
