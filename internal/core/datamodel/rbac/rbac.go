package rbac

import "time"

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Description string    `gorm:"column:description"`
	Level       int       `gorm:"column:level;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	DisplayName string    `gorm:"column:display_name;not null"`
	Description string    `gorm:"column:description"`
	Resource    string    `gorm:"column:resource;not null"`
	Action      string    `gorm:"column:action;not null"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Permission) TableName() string {
	return "permissions"
}

type RolePermission struct {
	RoleID       int64     `gorm:"column:role_id;primaryKey"`
	PermissionID int64     `gorm:"column:permission_id;primaryKey"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserRole is a role assignment. (user_id, role_id) is unique; re-assignment
// reactivates the existing row instead of inserting a duplicate.
type UserRole struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null;uniqueIndex:idx_user_roles_user_role"`
	RoleID     int64      `gorm:"column:role_id;not null;uniqueIndex:idx_user_roles_user_role"`
	ScopeID    *int64     `gorm:"column:scope_id"`
	ScopeType  *string    `gorm:"column:scope_type"`
	AssignedBy int64      `gorm:"column:assigned_by;not null"`
	AssignedAt time.Time  `gorm:"column:assigned_at;not null"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	IsActive   bool       `gorm:"column:is_active;default:true"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// UserPermission is a direct grant, bypassing roles. Same uniqueness and
// reactivation semantics as UserRole.
type UserPermission struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;uniqueIndex:idx_user_permissions_user_perm"`
	PermissionID int64      `gorm:"column:permission_id;not null;uniqueIndex:idx_user_permissions_user_perm"`
	ScopeID      *int64     `gorm:"column:scope_id"`
	ScopeType    *string    `gorm:"column:scope_type"`
	GrantedBy    int64      `gorm:"column:granted_by;not null"`
	GrantedAt    time.Time  `gorm:"column:granted_at;not null"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
