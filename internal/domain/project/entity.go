package project

import "time"

type Project struct {
	ID          string
	WorkspaceID string
	CreatedBy   string
	Name        string
	Description *string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO / Join
	TaskCount   *int
	MemberCount *int
}

type Member struct {
	ProjectID string
	UserID    string
	AddedBy   string
	AddedAt   time.Time

	// DTO / Join
	UserName *string
	Email    *string
}
