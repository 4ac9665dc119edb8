package models

import "time"

type Photo struct {
	ID           string
	WorkspaceID  string
	UploaderID   string
	Filename     string
	OriginalName string
	URL          string
	MimeType     string
	SizeBytes    int64
	Checksum     []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PhotoSelection marks a photo as a client favorite. Unique per
// (photo, user).
type PhotoSelection struct {
	PhotoID   string
	UserID    string
	CreatedAt time.Time
}

// PhotoWithSelections is the list-view shape: the photo plus who
// currently has it selected.
type PhotoWithSelections struct {
	Photo
	SelectedBy []string
}
