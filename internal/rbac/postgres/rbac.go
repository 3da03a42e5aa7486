package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	rbacDatamodel "github.com/fitstack/fitness-platform/internal/core/datamodel/rbac"
	"github.com/fitstack/fitness-platform/internal/rbac"
)

// Repository implements rbac.Repository using GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) rbac.Repository {
	return &Repository{db: db}
}

const rolePermissionsForUserQuery = `
	SELECT p.id, p.name, p.display_name, p.description, p.resource, p.action, p.is_active
	FROM permissions p
	JOIN role_permissions rp ON rp.permission_id = p.id
	JOIN user_roles ur ON ur.role_id = rp.role_id
	JOIN roles r ON r.id = ur.role_id
	WHERE ur.user_id = ?
	  AND ur.is_active = true
	  AND (ur.expires_at IS NULL OR ur.expires_at > ?)
	  AND rp.is_active = true
	  AND r.is_active = true
	  AND p.is_active = true`

const directPermissionsForUserQuery = `
	SELECT p.id, p.name, p.display_name, p.description, p.resource, p.action, p.is_active
	FROM permissions p
	JOIN user_permissions up ON up.permission_id = p.id
	WHERE up.user_id = ?
	  AND up.is_active = true
	  AND (up.expires_at IS NULL OR up.expires_at > ?)
	  AND p.is_active = true`

func (r *Repository) GetRolePermissionsForUser(userID int64) ([]rbac.Permission, error) {
	var rows []rbacDatamodel.Permission
	if err := r.db.Raw(rolePermissionsForUserQuery, userID, time.Now()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toPermissions(rows), nil
}

func (r *Repository) GetDirectPermissionsForUser(userID int64) ([]rbac.Permission, error) {
	var rows []rbacDatamodel.Permission
	if err := r.db.Raw(directPermissionsForUserQuery, userID, time.Now()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toPermissions(rows), nil
}

func (r *Repository) UpsertUserRole(userID, roleID, assignedBy int64, assignedAt time.Time, opts rbac.AssignmentOptions) error {
	row := &rbacDatamodel.UserRole{
		UserID:     userID,
		RoleID:     roleID,
		ScopeID:    opts.ScopeID,
		ScopeType:  opts.ScopeType,
		AssignedBy: assignedBy,
		AssignedAt: assignedAt,
		ExpiresAt:  opts.ExpiresAt,
		IsActive:   true,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"scope_id":    opts.ScopeID,
			"scope_type":  opts.ScopeType,
			"assigned_by": assignedBy,
			"assigned_at": assignedAt,
			"expires_at":  opts.ExpiresAt,
			"is_active":   true,
		}),
	}).Create(row).Error
}

func (r *Repository) DeactivateUserRole(userID, roleID int64) error {
	// Zero affected rows is fine: removing an unassigned role is a no-op.
	return r.db.Model(&rbacDatamodel.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Update("is_active", false).Error
}

func (r *Repository) UpsertUserPermission(userID, permissionID, grantedBy int64, grantedAt time.Time, opts rbac.AssignmentOptions) error {
	row := &rbacDatamodel.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		ScopeID:      opts.ScopeID,
		ScopeType:    opts.ScopeType,
		GrantedBy:    grantedBy,
		GrantedAt:    grantedAt,
		ExpiresAt:    opts.ExpiresAt,
		IsActive:     true,
	}

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "permission_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"scope_id":   opts.ScopeID,
			"scope_type": opts.ScopeType,
			"granted_by": grantedBy,
			"granted_at": grantedAt,
			"expires_at": opts.ExpiresAt,
			"is_active":  true,
		}),
	}).Create(row).Error
}

func (r *Repository) DeactivateUserPermission(userID, permissionID int64) error {
	return r.db.Model(&rbacDatamodel.UserPermission{}).
		Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Update("is_active", false).Error
}

func (r *Repository) GetRolePermissions(roleID int64) ([]rbac.Permission, error) {
	const query = `
		SELECT p.id, p.name, p.display_name, p.description, p.resource, p.action, p.is_active
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = ?
		  AND rp.is_active = true
		  AND p.is_active = true`

	var rows []rbacDatamodel.Permission
	if err := r.db.Raw(query, roleID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toPermissions(rows), nil
}

// HasExactPermission runs a single union query over both permission sources
// filtered to the literal (resource, action) pair. Wildcard rows only match
// when the caller asks for the wildcard literal itself.
func (r *Repository) HasExactPermission(userID int64, resource, action string) (bool, error) {
	const query = `
		SELECT COUNT(1)
		FROM permissions p
		WHERE p.is_active = true
		  AND p.resource = ?
		  AND p.action = ?
		  AND (
			p.id IN (
				SELECT rp.permission_id
				FROM role_permissions rp
				JOIN user_roles ur ON ur.role_id = rp.role_id
				WHERE ur.user_id = ?
				  AND ur.is_active = true
				  AND (ur.expires_at IS NULL OR ur.expires_at > ?)
				  AND rp.is_active = true
			)
			OR p.id IN (
				SELECT up.permission_id
				FROM user_permissions up
				WHERE up.user_id = ?
				  AND up.is_active = true
				  AND (up.expires_at IS NULL OR up.expires_at > ?)
			)
		  )`

	now := time.Now()
	var count int64
	if err := r.db.Raw(query, resource, action, userID, now, userID, now).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateRole(role *rbac.Role) error {
	row := &rbacDatamodel.Role{
		Name:        role.Name,
		DisplayName: role.DisplayName,
		Description: role.Description,
		Level:       role.Level,
		IsActive:    role.IsActive,
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	role.ID = row.ID
	return nil
}

func (r *Repository) CreatePermission(permission *rbac.Permission) error {
	row := &rbacDatamodel.Permission{
		Name:        permission.Name,
		DisplayName: permission.DisplayName,
		Description: permission.Description,
		Resource:    permission.Resource,
		Action:      permission.Action,
		IsActive:    permission.IsActive,
	}
	if err := r.db.Create(row).Error; err != nil {
		return err
	}
	permission.ID = row.ID
	return nil
}

func (r *Repository) AddPermissionToRole(roleID, permissionID int64) error {
	row := &rbacDatamodel.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		IsActive:     true,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_id"}, {Name: "permission_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
	}).Create(row).Error
}

func toPermissions(rows []rbacDatamodel.Permission) []rbac.Permission {
	permissions := make([]rbac.Permission, 0, len(rows))
	for _, row := range rows {
		permissions = append(permissions, rbac.Permission{
			ID:          row.ID,
			Name:        row.Name,
			DisplayName: row.DisplayName,
			Description: row.Description,
			Resource:    row.Resource,
			Action:      row.Action,
			IsActive:    row.IsActive,
		})
	}
	return permissions
}
