package session

import (
	"errors"
	"strconv"
	"time"
)

// Session is the domain view of a login session. Liveness is computed at
// read time from IsActive and ExpiresAt; there is no explicit status field.
type Session struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	RefreshTokenID string    `json:"refresh_token_id"`
	UserAgent      string    `json:"user_agent,omitempty"`
	IPAddress      string    `json:"ip_address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActiveAt   time.Time `json:"last_active_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	IsActive       bool      `json:"is_active"`
}

// IsLive reports whether the session is active and not yet expired at now.
func (s *Session) IsLive(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}

// Repository is the store contract for session rows.
type Repository interface {
	Create(session *Session) error
	// GetLive returns the session only when is_active and not expired at
	// the given instant; otherwise ErrSessionNotFound. Expired and missing
	// rows are indistinguishable to callers.
	GetLive(id string, now time.Time) (*Session, error)
	GetLiveByRefreshToken(refreshTokenID string, now time.Time) (*Session, error)
	CountLive(userID int64, now time.Time) (int64, error)
	// OldestLive returns the live session with the oldest last_active_at,
	// or ErrSessionNotFound when the user has none.
	OldestLive(userID int64, now time.Time) (*Session, error)
	// TouchActivity sets last_active_at on an active session; zero affected
	// rows is not an error.
	TouchActivity(id string, at time.Time) error
	UpdateRefreshToken(id, refreshTokenID string) error
	Deactivate(id string) error
	DeactivateByUser(userID int64) error
	// DeactivateExpired closes every row that is expired or already
	// inactive and returns the number of rows affected.
	DeactivateExpired(now time.Time) (int64, error)
}

var ErrSessionNotFound = errors.New("session not found")

const defaultExpiry = 7 * 24 * time.Hour

// ParseExpiry parses a duration string of the form "<n><unit>" with units
// s, m, h or d. Anything unparsable falls back to 7 days.
func ParseExpiry(value string) time.Duration {
	if len(value) < 2 {
		return defaultExpiry
	}

	n, err := strconv.Atoi(value[:len(value)-1])
	if err != nil || n <= 0 {
		return defaultExpiry
	}

	switch value[len(value)-1] {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return defaultExpiry
	}
}
