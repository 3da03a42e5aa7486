package authz

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fitstack/fitness-platform/internal/rbac"
)

// DefaultCacheTTL bounds how stale a cached permission set may get before a
// synchronous refresh.
const DefaultCacheTTL = 5 * time.Minute

// Engine answers permission checks with wildcard resolution on top of the
// role manager, caching each user's permission set for a short TTL.
//
// Role and permission mutations do NOT invalidate the cache automatically;
// callers mutating assignments must call InvalidateUser themselves or
// accept stale allows/denies for up to the TTL.
type Engine struct {
	source PermissionSource
	cache  *permissionCache
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithCacheTTL overrides the cache expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithClock injects the time source, used by tests to step past the TTL.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewEngine(source PermissionSource, logger *slog.Logger, opts ...Option) *Engine {
	o := options{ttl: DefaultCacheTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		source: source,
		cache:  newPermissionCache(o.ttl, o.now),
		logger: logger,
	}
}

// GetUserPermissions is a cache-through wrapper over the role manager.
// Expired entries are refreshed synchronously on the calling request.
func (e *Engine) GetUserPermissions(userID int64) ([]rbac.Permission, error) {
	if permissions, ok := e.cache.get(userID); ok {
		return permissions, nil
	}

	permissions, err := e.source.GetUserPermissions(userID)
	if err != nil {
		return nil, fmt.Errorf("load permissions for user %d: %w", userID, err)
	}

	e.cache.set(userID, permissions)
	return permissions, nil
}

// Authorize resolves the request against the user's permission set: exact
// matches first, wildcard matches second, otherwise a denial naming the
// missing pair. Lookup failures are converted into a denial with the error
// as reason; Authorize never returns an error.
func (e *Engine) Authorize(req AccessRequest) Decision {
	permissions, err := e.GetUserPermissions(req.UserID)
	if err != nil {
		e.logger.Error("authorization lookup failed",
			"user_id", req.UserID,
			"resource", req.Resource,
			"action", req.Action,
			"error", err)
		return Decision{Allowed: false, Reason: err.Error()}
	}

	var exact []rbac.Permission
	for _, p := range permissions {
		if p.MatchesExactly(req.Resource, req.Action) {
			exact = append(exact, p)
		}
	}
	if len(exact) > 0 {
		return Decision{Allowed: true, MatchedPermissions: exact}
	}

	var wildcard []rbac.Permission
	for _, p := range permissions {
		if p.Matches(req.Resource, req.Action) {
			wildcard = append(wildcard, p)
		}
	}
	if len(wildcard) > 0 {
		return Decision{Allowed: true, MatchedPermissions: wildcard}
	}

	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("missing permission %s:%s", req.Resource, req.Action),
	}
}

// CheckPermission is a convenience boolean wrapper over Authorize.
func (e *Engine) CheckPermission(userID int64, resource, action string) bool {
	return e.Authorize(AccessRequest{UserID: userID, Resource: resource, Action: action}).Allowed
}

// InvalidateUser drops one user's cached permission set.
func (e *Engine) InvalidateUser(userID int64) {
	e.cache.invalidate(userID)
}

// InvalidateAll clears the whole cache.
func (e *Engine) InvalidateAll() {
	e.cache.invalidateAll()
}
