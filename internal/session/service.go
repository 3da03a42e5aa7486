package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/fitness-platform/internal"
	"github.com/fitstack/fitness-platform/internal/core/events"
)

// Manager owns the session lifecycle: creation with concurrency-limited
// eviction, liveness-filtered reads, activity tracking and a background
// sweep that closes expired rows.
//
// The session-count limit is best effort: two concurrent logins near the
// limit may both observe a pre-eviction count. Individual row updates rely
// on the store's per-row atomicity; the aggregate invariant converges over
// subsequent logins.
type Manager struct {
	repo     Repository
	bus      *events.EventBus
	logger   *slog.Logger
	maxConc  int
	ttl      time.Duration
	interval time.Duration

	now func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewManager(repo Repository, cfg internal.SessionConfig, refreshTokenExpiry string, bus *events.EventBus, logger *slog.Logger) *Manager {
	m := &Manager{
		repo:     repo,
		bus:      bus,
		logger:   logger,
		maxConc:  cfg.MaxConcurrentSessions,
		ttl:      ParseExpiry(refreshTokenExpiry),
		interval: cfg.CleanupInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go m.sweepLoop()
	return m
}

// CreateSession enforces the per-user session limit and persists a new
// active session. When the user is at or over the limit, exactly one
// session, the least recently active, is evicted; repeated logins converge
// an over-limit count back down.
func (m *Manager) CreateSession(userID int64, refreshTokenID, userAgent, ipAddress string) (*Session, error) {
	if err := m.enforceSessionLimit(userID); err != nil {
		return nil, err
	}

	now := m.now()
	session := &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		RefreshTokenID: refreshTokenID,
		UserAgent:      userAgent,
		IPAddress:      ipAddress,
		CreatedAt:      now,
		LastActiveAt:   now,
		ExpiresAt:      now.Add(m.ttl),
		IsActive:       true,
	}

	if err := m.repo.Create(session); err != nil {
		return nil, fmt.Errorf("create session for user %d: %w", userID, err)
	}

	m.logger.Info("session created",
		"session_id", session.ID,
		"user_id", userID,
		"expires_at", session.ExpiresAt)
	return session, nil
}

func (m *Manager) enforceSessionLimit(userID int64) error {
	now := m.now()

	count, err := m.repo.CountLive(userID, now)
	if err != nil {
		return fmt.Errorf("count live sessions for user %d: %w", userID, err)
	}
	if count < int64(m.maxConc) {
		return nil
	}

	oldest, err := m.repo.OldestLive(userID, now)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("find oldest session for user %d: %w", userID, err)
	}

	if err := m.repo.Deactivate(oldest.ID); err != nil {
		return fmt.Errorf("evict session %s: %w", oldest.ID, err)
	}

	m.logger.Info("session evicted over concurrency limit",
		"session_id", oldest.ID,
		"user_id", userID,
		"last_active_at", oldest.LastActiveAt)
	if m.bus != nil {
		_ = m.bus.Publish(context.Background(), events.NewSessionEvictedEvent(userID, oldest.ID))
	}
	return nil
}

// GetSession returns the session only while it is live. Expired, closed and
// missing sessions are all ErrSessionNotFound.
func (m *Manager) GetSession(sessionID string) (*Session, error) {
	session, err := m.repo.GetLive(sessionID, m.now())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

// GetSessionByRefreshToken validates that a presented refresh token still
// corresponds to a live, non-revoked session.
func (m *Manager) GetSessionByRefreshToken(refreshTokenID string) (*Session, error) {
	session, err := m.repo.GetLiveByRefreshToken(refreshTokenID, m.now())
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by refresh token: %w", err)
	}
	return session, nil
}

// UpdateLastActivity touches the session's last_active_at. Touching an
// inactive session is a silent no-op.
func (m *Manager) UpdateLastActivity(sessionID string) error {
	if err := m.repo.TouchActivity(sessionID, m.now()); err != nil {
		return fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	return nil
}

// RotateRefreshToken re-correlates the session with a newly issued refresh
// token during the refresh flow.
func (m *Manager) RotateRefreshToken(sessionID, refreshTokenID string) error {
	if err := m.repo.UpdateRefreshToken(sessionID, refreshTokenID); err != nil {
		return fmt.Errorf("rotate refresh token for session %s: %w", sessionID, err)
	}
	return nil
}

// DestroySession soft-closes the session. Idempotent.
func (m *Manager) DestroySession(sessionID string) error {
	if err := m.repo.Deactivate(sessionID); err != nil {
		return fmt.Errorf("destroy session %s: %w", sessionID, err)
	}
	m.logger.Info("session destroyed", "session_id", sessionID)
	return nil
}

// DestroyUserSessions soft-closes every session of the user. Idempotent.
func (m *Manager) DestroyUserSessions(userID int64) error {
	if err := m.repo.DeactivateByUser(userID); err != nil {
		return fmt.Errorf("destroy sessions for user %d: %w", userID, err)
	}
	m.logger.Info("user sessions destroyed", "user_id", userID)
	return nil
}

// Sweep closes expired rows once. Exposed so the sweep is testable without
// waiting on the ticker; the background loop calls it on every interval.
func (m *Manager) Sweep() {
	affected, err := m.repo.DeactivateExpired(m.now())
	if err != nil {
		// Sweep failures must never take down the process; retry next tick.
		m.logger.Error("session sweep failed", "error", err)
		return
	}
	if affected > 0 {
		m.logger.Info("session sweep closed expired sessions", "count", affected)
	}
}

func (m *Manager) sweepLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Close stops the background sweep. Required for clean shutdown; safe to
// call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}
