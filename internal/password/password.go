package password

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/fitstack/fitness-platform/internal"
)

// StrengthResult reports every violated rule so UIs can show the full list,
// not just the first failure.
type StrengthResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Manager handles password hashing, verification and strength validation.
// It is pure: no store access, safe for concurrent use.
type Manager struct {
	cost int
	cfg  internal.PasswordConfig
}

func NewManager(cost int, cfg internal.PasswordConfig) *Manager {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = internal.DefaultBCryptCost
	}
	return &Manager{cost: cost, cfg: cfg}
}

// HashPassword hashes the password with the configured bcrypt cost.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares password against hash in constant time. A mismatch
// is (false, nil); a malformed hash surfaces as a wrapped error.
func (m *Manager) VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}

// ValidateStrength checks each configured rule independently and accumulates
// every violation.
func (m *Manager) ValidateStrength(password string) StrengthResult {
	var errs []string

	if len(password) < m.cfg.MinLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", m.cfg.MinLength))
	}
	if m.cfg.RequireNumbers && !strings.ContainsFunc(password, unicode.IsDigit) {
		errs = append(errs, "password must contain at least one number")
	}
	if m.cfg.RequireUppercase && !strings.ContainsFunc(password, unicode.IsUpper) {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if m.cfg.RequireLowercase && !strings.ContainsFunc(password, unicode.IsLower) {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if m.cfg.RequireSpecialChars && !strings.ContainsFunc(password, isSpecialChar) {
		errs = append(errs, "password must contain at least one special character")
	}

	return StrengthResult{IsValid: len(errs) == 0, Errors: errs}
}

// GenerateSalt returns a cryptographically secure random salt for callers
// that need one outside of bcrypt.
func (m *Manager) GenerateSalt() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

func isSpecialChar(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
