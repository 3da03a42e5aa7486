package authz

import (
	"github.com/fitstack/fitness-platform/internal/rbac"
)

// PermissionSource is the role-manager-shaped dependency the engine needs.
type PermissionSource interface {
	GetUserPermissions(userID int64) ([]rbac.Permission, error)
}

// AccessRequest identifies one authorization question.
type AccessRequest struct {
	UserID   int64  `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// Decision is the structured outcome of an authorization check. Checks never
// fail with an error; lookup failures surface as a denial with a reason.
type Decision struct {
	Allowed            bool              `json:"allowed"`
	Reason             string            `json:"reason,omitempty"`
	MatchedPermissions []rbac.Permission `json:"matched_permissions,omitempty"`
}
