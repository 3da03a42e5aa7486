package workout

import (
	"strings"
	"time"
)

type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

type CreateWorkoutDTO struct {
	Name        string     `json:"name"`
	Notes       string     `json:"notes"`
	DurationMin int        `json:"duration_min"`
	PerformedAt *time.Time `json:"performed_at"`
}

func (d CreateWorkoutDTO) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.DurationMin < 0 {
		return ValidationError{Msg: "duration_min must not be negative"}
	}
	return nil
}

type UpdateWorkoutDTO struct {
	Name        *string    `json:"name"`
	Notes       *string    `json:"notes"`
	DurationMin *int       `json:"duration_min"`
	PerformedAt *time.Time `json:"performed_at"`
}

func (d UpdateWorkoutDTO) Validate() error {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return ValidationError{Msg: "name must not be empty"}
	}
	if d.DurationMin != nil && *d.DurationMin < 0 {
		return ValidationError{Msg: "duration_min must not be negative"}
	}
	return nil
}
