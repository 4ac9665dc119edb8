package models

import "time"

type WorkspaceStatus string

const (
	WorkspaceStatusActive    WorkspaceStatus = "active"
	WorkspaceStatusInactive  WorkspaceStatus = "inactive"
	WorkspaceStatusSuspended WorkspaceStatus = "suspended"
)

type Workspace struct {
	ID        string
	Name      string
	Slug      string
	Status    WorkspaceStatus
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
