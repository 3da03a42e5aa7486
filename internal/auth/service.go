package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fitstack/fitness-platform/internal/core/events"
	"github.com/fitstack/fitness-platform/internal/password"
	"github.com/fitstack/fitness-platform/internal/rbac"
	"github.com/fitstack/fitness-platform/internal/session"
)

// PasswordManager is the password-handling contract the flows consume.
type PasswordManager interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) (bool, error)
	ValidateStrength(password string) password.StrengthResult
}

// SessionStore is the session-lifecycle contract the flows consume.
type SessionStore interface {
	CreateSession(userID int64, refreshTokenID, userAgent, ipAddress string) (*session.Session, error)
	GetSessionByRefreshToken(refreshTokenID string) (*session.Session, error)
	RotateRefreshToken(sessionID, refreshTokenID string) error
	UpdateLastActivity(sessionID string) error
	DestroySession(sessionID string) error
	DestroyUserSessions(userID int64) error
}

// PermissionResolver loads a user's effective permission set; satisfied by
// the authorization engine so middleware reads go through its cache.
type PermissionResolver interface {
	GetUserPermissions(userID int64) ([]rbac.Permission, error)
}

// ServiceAPI is the surface the HTTP handler depends on.
type ServiceAPI interface {
	Register(dto RegisterDTO) (*User, error)
	Login(dto LoginDTO, userAgent, ipAddress string) (AuthTokens, error)
	Refresh(refreshToken string) (AuthTokens, error)
	Logout(accessToken string) error
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(userID int64) (*User, error)
	TouchSession(sessionID string) error
}

// Service orchestrates register, login, refresh and logout over the
// password manager, session manager and token generator.
type Service struct {
	users     UserRepository
	passwords PasswordManager
	sessions  SessionStore
	tokens    TokenGenerator
	resolver  PermissionResolver
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(
	users UserRepository,
	passwords PasswordManager,
	sessions SessionStore,
	tokens TokenGenerator,
	resolver PermissionResolver,
	bus *events.EventBus,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:     users,
		passwords: passwords,
		sessions:  sessions,
		tokens:    tokens,
		resolver:  resolver,
		bus:       bus,
		logger:    logger,
	}
}

// Register validates password strength, hashes the password and creates the
// user. Every violated strength rule is reported, not only the first.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if result := s.passwords.ValidateStrength(dto.Password); !result.IsValid {
		return nil, ValidationError{Msg: strings.Join(result.Errors, "; ")}
	}

	hash, err := s.passwords.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	userID, err := s.users.CreateUser(dto.Email, dto.Name, hash)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "email", dto.Email)
	if s.bus != nil {
		_ = s.bus.Publish(context.Background(), events.NewUserRegisteredEvent(userID, dto.Email))
	}

	return &User{ID: userID, Email: dto.Email, Name: dto.Name}, nil
}

// Login verifies the credentials, opens a session correlated with a fresh
// refresh-token id and issues the token pair.
func (s *Service) Login(dto LoginDTO, userAgent, ipAddress string) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.users.GetCredentials(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: user lookup", "email", dto.Email, "error", err)
		return AuthTokens{}, ErrInvalidCredentials
	}
	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	ok, err := s.passwords.VerifyPassword(dto.Password, creds.PasswordHash)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		return AuthTokens{}, ErrInvalidCredentials
	}

	refreshTokenID := uuid.NewString()
	sess, err := s.sessions.CreateSession(creds.UserID, refreshTokenID, userAgent, ipAddress)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("open session: %w", err)
	}

	tokens, err := s.issueTokens(creds, sess.ID, refreshTokenID)
	if err != nil {
		return AuthTokens{}, err
	}

	s.logger.Info("user logged in", "user_id", creds.UserID, "session_id", sess.ID)
	if s.bus != nil {
		_ = s.bus.Publish(context.Background(), events.NewUserLoggedInEvent(creds.UserID, sess.ID, ipAddress))
	}

	return tokens, nil
}

// Refresh rotates the token pair. The refresh token must still correspond
// to a live session; a token whose session was revoked or evicted is
// rejected even when its signature and expiry are valid.
func (s *Service) Refresh(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	sess, err := s.sessions.GetSessionByRefreshToken(claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return AuthTokens{}, ErrInvalidToken
		}
		return AuthTokens{}, fmt.Errorf("refresh tokens: %w", err)
	}

	creds, err := s.users.GetUser(sess.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	newRefreshTokenID := uuid.NewString()
	if err := s.sessions.RotateRefreshToken(sess.ID, newRefreshTokenID); err != nil {
		return AuthTokens{}, fmt.Errorf("refresh tokens: %w", err)
	}
	if err := s.sessions.UpdateLastActivity(sess.ID); err != nil {
		s.logger.Warn("failed to touch session on refresh", "session_id", sess.ID, "error", err)
	}

	return s.issueTokens(creds, sess.ID, newRefreshTokenID)
}

// Logout closes the session named by the access token. Idempotent.
func (s *Service) Logout(accessToken string) error {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}

	if claims.SessionID == "" {
		return nil
	}
	if err := s.sessions.DestroySession(claims.SessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.logger.Info("user logged out", "session_id", claims.SessionID)
	if s.bus != nil {
		userID, _ := strconv.ParseInt(claims.UserID, 10, 64)
		_ = s.bus.Publish(context.Background(), events.NewUserLoggedOutEvent(userID, claims.SessionID))
	}
	return nil
}

// TouchSession records activity on the session so the concurrency-limit
// eviction tracks real use, not creation order.
func (s *Service) TouchSession(sessionID string) error {
	return s.sessions.UpdateLastActivity(sessionID)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(tokenString)
}

// GetUserWithPermissions hydrates the context principal for middleware. The
// permission set comes from the authorization engine's cache.
func (s *Service) GetUserWithPermissions(userID int64) (*User, error) {
	creds, err := s.users.GetUser(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	permissions, err := s.resolver.GetUserPermissions(userID)
	if err != nil {
		return nil, fmt.Errorf("load user permissions: %w", err)
	}

	return &User{
		ID:          creds.UserID,
		Email:       creds.Email,
		Name:        creds.Name,
		Permissions: permissions,
	}, nil
}

func (s *Service) issueTokens(creds *Credentials, sessionID, refreshTokenID string) (AuthTokens, error) {
	userID := fmt.Sprintf("%d", creds.UserID)

	accessToken, err := s.tokens.GenerateAccessToken(userID, creds.Email, sessionID)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, creds.Email, sessionID, refreshTokenID)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("issue refresh token: %w", err)
	}

	return AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
