package rbac

import (
	"errors"
	"time"
)

// Wildcard matches any resource or action during authorization. The exact
// match query in HasPermission deliberately ignores it.
const Wildcard = "*"

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Level       int    `json:"level"`
	IsActive    bool   `json:"is_active"`
}

type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	IsActive    bool   `json:"is_active"`
}

// Matches reports whether the permission covers resource/action, honoring
// wildcards on either position.
func (p Permission) Matches(resource, action string) bool {
	return (p.Resource == Wildcard || p.Resource == resource) &&
		(p.Action == Wildcard || p.Action == action)
}

// MatchesExactly ignores wildcard semantics.
func (p Permission) MatchesExactly(resource, action string) bool {
	return p.Resource == resource && p.Action == action
}

// AssignmentOptions carries the optional metadata of a role assignment or
// direct grant.
type AssignmentOptions struct {
	ScopeID   *int64
	ScopeType *string
	ExpiresAt *time.Time
}

// Repository is the store contract for roles, permissions and their
// assignments. Implementations filter to active, non-expired rows where the
// method says so.
type Repository interface {
	// GetRolePermissionsForUser returns permissions reachable through the
	// user's active non-expired role assignments.
	GetRolePermissionsForUser(userID int64) ([]Permission, error)
	// GetDirectPermissionsForUser returns the user's active non-expired
	// direct grants.
	GetDirectPermissionsForUser(userID int64) ([]Permission, error)
	// UpsertUserRole inserts the assignment or, on a (user_id, role_id)
	// conflict, reactivates it and refreshes the metadata.
	UpsertUserRole(userID, roleID, assignedBy int64, assignedAt time.Time, opts AssignmentOptions) error
	// DeactivateUserRole soft-revokes; zero affected rows is not an error.
	DeactivateUserRole(userID, roleID int64) error
	UpsertUserPermission(userID, permissionID, grantedBy int64, grantedAt time.Time, opts AssignmentOptions) error
	DeactivateUserPermission(userID, permissionID int64) error
	GetRolePermissions(roleID int64) ([]Permission, error)
	// HasExactPermission is an existence check on the exact (resource,
	// action) pair across both permission sources. No wildcard matching.
	HasExactPermission(userID int64, resource, action string) (bool, error)
	CreateRole(role *Role) error
	CreatePermission(permission *Permission) error
	AddPermissionToRole(roleID, permissionID int64) error
}

var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
)
