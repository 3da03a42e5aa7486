package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitstack/fitness-platform/internal/core/events"
)

// Service is the role manager: assignment lifecycle and permission
// resolution over the relational store. Mutations are announced on the
// event bus; resolution reads are not.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) publish(event events.Event) {
	if s.bus != nil {
		_ = s.bus.Publish(context.Background(), event)
	}
}

// GetUserPermissions returns the user's effective permission set: the union
// of role-derived permissions and direct grants, deduplicated by permission
// id. Role-derived entries are collected first so a duplicate direct grant
// wins. Order is not guaranteed.
func (s *Service) GetUserPermissions(userID int64) ([]Permission, error) {
	rolePerms, err := s.repo.GetRolePermissionsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("get role permissions for user %d: %w", userID, err)
	}

	directPerms, err := s.repo.GetDirectPermissionsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("get direct permissions for user %d: %w", userID, err)
	}

	merged := make(map[int64]Permission, len(rolePerms)+len(directPerms))
	for _, p := range rolePerms {
		merged[p.ID] = p
	}
	for _, p := range directPerms {
		merged[p.ID] = p
	}

	permissions := make([]Permission, 0, len(merged))
	for _, p := range merged {
		permissions = append(permissions, p)
	}
	return permissions, nil
}

// AssignRole assigns a role with upsert semantics: assigning an already
// assigned role never fails, it reactivates the row and the second call's
// metadata wins.
func (s *Service) AssignRole(userID, roleID, assignedBy int64, opts AssignmentOptions) error {
	if err := s.repo.UpsertUserRole(userID, roleID, assignedBy, time.Now(), opts); err != nil {
		return fmt.Errorf("assign role %d to user %d: %w", roleID, userID, err)
	}

	s.logger.Info("role assigned",
		"user_id", userID,
		"role_id", roleID,
		"assigned_by", assignedBy)
	s.publish(events.NewRoleAssignedEvent(userID, roleID, assignedBy))
	return nil
}

// RemoveRole soft-revokes the assignment. Removing a role that was never
// assigned is a silent no-op.
func (s *Service) RemoveRole(userID, roleID int64) error {
	if err := s.repo.DeactivateUserRole(userID, roleID); err != nil {
		return fmt.Errorf("remove role %d from user %d: %w", roleID, userID, err)
	}

	s.logger.Info("role removed", "user_id", userID, "role_id", roleID)
	s.publish(events.NewRoleRemovedEvent(userID, roleID))
	return nil
}

// GrantPermission is the direct-grant analog of AssignRole.
func (s *Service) GrantPermission(userID, permissionID, grantedBy int64, opts AssignmentOptions) error {
	if err := s.repo.UpsertUserPermission(userID, permissionID, grantedBy, time.Now(), opts); err != nil {
		return fmt.Errorf("grant permission %d to user %d: %w", permissionID, userID, err)
	}

	s.logger.Info("permission granted",
		"user_id", userID,
		"permission_id", permissionID,
		"granted_by", grantedBy)
	s.publish(events.NewPermissionChangedEvent(userID, permissionID, "granted"))
	return nil
}

// RevokePermission is the direct-grant analog of RemoveRole.
func (s *Service) RevokePermission(userID, permissionID int64) error {
	if err := s.repo.DeactivateUserPermission(userID, permissionID); err != nil {
		return fmt.Errorf("revoke permission %d from user %d: %w", permissionID, userID, err)
	}

	s.logger.Info("permission revoked", "user_id", userID, "permission_id", permissionID)
	s.publish(events.NewPermissionChangedEvent(userID, permissionID, "revoked"))
	return nil
}

// GetRolePermissions returns the permissions attached to a single role,
// ignoring any user context.
func (s *Service) GetRolePermissions(roleID int64) ([]Permission, error) {
	permissions, err := s.repo.GetRolePermissions(roleID)
	if err != nil {
		return nil, fmt.Errorf("get permissions for role %d: %w", roleID, err)
	}
	return permissions, nil
}

// HasPermission is a fast existence check on the exact (resource, action)
// pair. It does not apply wildcard matching; a user holding only "*" fails
// this check while passing the authorization engine. Wildcard resolution is
// layered on top by the authz engine.
func (s *Service) HasPermission(userID int64, resource, action string) (bool, error) {
	ok, err := s.repo.HasExactPermission(userID, resource, action)
	if err != nil {
		return false, fmt.Errorf("check permission %s:%s for user %d: %w", resource, action, userID, err)
	}
	return ok, nil
}

// CreateRole registers a new role definition.
func (s *Service) CreateRole(role *Role) error {
	if err := s.repo.CreateRole(role); err != nil {
		return fmt.Errorf("create role %q: %w", role.Name, err)
	}
	return nil
}

// CreatePermission registers a new permission definition.
func (s *Service) CreatePermission(permission *Permission) error {
	if err := s.repo.CreatePermission(permission); err != nil {
		return fmt.Errorf("create permission %q: %w", permission.Name, err)
	}
	return nil
}

// AddPermissionToRole attaches a permission to a role definition.
func (s *Service) AddPermissionToRole(roleID, permissionID int64) error {
	if err := s.repo.AddPermissionToRole(roleID, permissionID); err != nil {
		return fmt.Errorf("add permission %d to role %d: %w", permissionID, roleID, err)
	}
	return nil
}
