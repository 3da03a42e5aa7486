package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	sessionDatamodel "github.com/fitstack/fitness-platform/internal/core/datamodel/session"
	"github.com/fitstack/fitness-platform/internal/session"
)

// Repository implements session.Repository using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) session.Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(s *session.Session) error {
	return r.db.Create(toDataModel(s)).Error
}

func (r *Repository) GetLive(id string, now time.Time) (*session.Session, error) {
	var row sessionDatamodel.Session
	err := r.db.
		Where("id = ? AND is_active = ? AND expires_at > ?", id, true, now).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return fromDataModel(&row), nil
}

func (r *Repository) GetLiveByRefreshToken(refreshTokenID string, now time.Time) (*session.Session, error) {
	var row sessionDatamodel.Session
	err := r.db.
		Where("refresh_token_id = ? AND is_active = ? AND expires_at > ?", refreshTokenID, true, now).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return fromDataModel(&row), nil
}

func (r *Repository) CountLive(userID int64, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&sessionDatamodel.Session{}).
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Count(&count).Error
	return count, err
}

func (r *Repository) OldestLive(userID int64, now time.Time) (*session.Session, error) {
	var row sessionDatamodel.Session
	err := r.db.
		Where("user_id = ? AND is_active = ? AND expires_at > ?", userID, true, now).
		Order("last_active_at ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return fromDataModel(&row), nil
}

func (r *Repository) TouchActivity(id string, at time.Time) error {
	return r.db.Model(&sessionDatamodel.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("last_active_at", at).Error
}

func (r *Repository) UpdateRefreshToken(id, refreshTokenID string) error {
	return r.db.Model(&sessionDatamodel.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("refresh_token_id", refreshTokenID).Error
}

func (r *Repository) Deactivate(id string) error {
	return r.db.Model(&sessionDatamodel.Session{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *Repository) DeactivateByUser(userID int64) error {
	return r.db.Model(&sessionDatamodel.Session{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error
}

// DeactivateExpired closes rows that expired while still marked active and
// reports how many it touched. A repeat pass affects nothing.
func (r *Repository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&sessionDatamodel.Session{}).
		Where("expires_at <= ? AND is_active = ?", now, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func toDataModel(s *session.Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		ID:             s.ID,
		UserID:         s.UserID,
		RefreshTokenID: s.RefreshTokenID,
		UserAgent:      s.UserAgent,
		IPAddress:      s.IPAddress,
		CreatedAt:      s.CreatedAt,
		LastActiveAt:   s.LastActiveAt,
		ExpiresAt:      s.ExpiresAt,
		IsActive:       s.IsActive,
	}
}

func fromDataModel(row *sessionDatamodel.Session) *session.Session {
	return &session.Session{
		ID:             row.ID,
		UserID:         row.UserID,
		RefreshTokenID: row.RefreshTokenID,
		UserAgent:      row.UserAgent,
		IPAddress:      row.IPAddress,
		CreatedAt:      row.CreatedAt,
		LastActiveAt:   row.LastActiveAt,
		ExpiresAt:      row.ExpiresAt,
		IsActive:       row.IsActive,
	}
}
