package models

import "time"

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Invitation grants an email address a role and a workspace binding
// once accepted. The token is single use and time limited.
type Invitation struct {
	ID          string
	Token       string
	Email       string
	Role        UserRole
	WorkspaceID string
	InviterID   string
	Status      InvitationStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
