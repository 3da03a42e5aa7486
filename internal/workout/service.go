package workout

import (
	"fmt"
	"log/slog"
	"time"
)

type ServiceAPI interface {
	Create(userID int64, dto CreateWorkoutDTO) (*Workout, error)
	GetByID(id int64) (*Workout, error)
	ListByUser(userID int64, limit, offset int) ([]Workout, error)
	Update(id int64, dto UpdateWorkoutDTO) (*Workout, error)
	Delete(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(userID int64, dto CreateWorkoutDTO) (*Workout, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	w := &Workout{
		UserID:      userID,
		Name:        dto.Name,
		Notes:       dto.Notes,
		DurationMin: dto.DurationMin,
		PerformedAt: dto.PerformedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(w); err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}

	s.logger.Info("workout created", "workout_id", w.ID, "user_id", userID)
	return w, nil
}

func (s *Service) GetByID(id int64) (*Workout, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByUser(userID int64, limit, offset int) ([]Workout, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(userID, limit, offset)
}

func (s *Service) Update(id int64, dto UpdateWorkoutDTO) (*Workout, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	w, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		w.Name = *dto.Name
	}
	if dto.Notes != nil {
		w.Notes = *dto.Notes
	}
	if dto.DurationMin != nil {
		w.DurationMin = *dto.DurationMin
	}
	if dto.PerformedAt != nil {
		w.PerformedAt = dto.PerformedAt
	}
	w.UpdatedAt = time.Now()

	if err := s.repo.Update(w); err != nil {
		return nil, fmt.Errorf("update workout: %w", err)
	}
	return w, nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
