package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventUserRegistered   = "auth.user_registered"
	EventUserLoggedIn     = "auth.user_logged_in"
	EventUserLoggedOut    = "auth.user_logged_out"
	EventSessionEvicted   = "auth.session_evicted"
	EventRoleAssigned     = "auth.role_assigned"
	EventRoleRemoved      = "auth.role_removed"
	EventPermissionChange = "auth.permission_changed"
)

func NewUserLoggedInEvent(userID int64, sessionID, ipAddress string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserLoggedIn,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
			"ip_address": ipAddress,
		},
	}
}

func NewUserLoggedOutEvent(userID int64, sessionID string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserLoggedOut,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		},
	}
}

func NewSessionEvictedEvent(userID int64, sessionID string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventSessionEvicted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		},
	}
}

func NewUserRegisteredEvent(userID int64, email string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserRegistered,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"email":   email,
		},
	}
}

func NewRoleAssignedEvent(userID, roleID, assignedBy int64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRoleAssigned,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":     userID,
			"role_id":     roleID,
			"assigned_by": assignedBy,
		},
	}
}

func NewRoleRemovedEvent(userID, roleID int64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRoleRemoved,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id": userID,
			"role_id": roleID,
		},
	}
}

// NewPermissionChangedEvent covers direct grants and revocations; change is
// "granted" or "revoked".
func NewPermissionChangedEvent(userID, permissionID int64, change string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventPermissionChange,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":       userID,
			"permission_id": permissionID,
			"change":        change,
		},
	}
}
