package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fitstack/fitness-platform/internal/auth"
	userDatamodel "github.com/fitstack/fitness-platform/internal/core/datamodel/user"
	"github.com/fitstack/fitness-platform/internal/user"
)

// Repository implements user.Repository and the narrow auth.UserRepository
// contract over the same users table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) GetCredentials(email string) (*auth.Credentials, error) {
	u, err := r.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	return toCredentials(u), nil
}

func (r *Repository) GetUser(userID int64) (*auth.Credentials, error) {
	u, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return toCredentials(u), nil
}

func (r *Repository) CreateUser(email, name, passwordHash string) (int64, error) {
	row := &userDatamodel.User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := r.db.Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, auth.ErrEmailTaken
		}
		return 0, err
	}
	return row.ID, nil
}

func toCredentials(u *user.User) *auth.Credentials {
	return &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

var _ user.Repository = (*Repository)(nil)
var _ auth.UserRepository = (*Repository)(nil)
