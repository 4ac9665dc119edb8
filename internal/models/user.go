package models

import "time"

type UserRole string

const (
	UserRoleSuperAdmin    UserRole = "super_admin"
	UserRoleBusinessOwner UserRole = "business_owner"
	UserRoleStaff         UserRole = "staff"
	UserRoleUser          UserRole = "user"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

// User belongs to at most one workspace. WorkspaceID is nil only for
// super admins, which are workspace-less and globally privileged.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Role         UserRole
	Status       UserStatus
	WorkspaceID  *string
	Color        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsSuperAdmin() bool {
	return u.Role == UserRoleSuperAdmin
}

// CanManage reports whether the user may administer workspace-scoped
// resources (invitations, bulk deletes) in the given workspace.
func (u User) CanManage(workspaceID string) bool {
	if u.IsSuperAdmin() {
		return true
	}
	if u.WorkspaceID == nil || *u.WorkspaceID != workspaceID {
		return false
	}
	return u.Role == UserRoleBusinessOwner || u.Role == UserRoleStaff
}

// MemberOf reports whether the user may view the given workspace.
func (u User) MemberOf(workspaceID string) bool {
	if u.IsSuperAdmin() {
		return true
	}
	return u.WorkspaceID != nil && *u.WorkspaceID == workspaceID
}

type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
