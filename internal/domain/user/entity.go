package user

import "time"

type Role string

const (
	RoleOwner   Role = "owner"   // Workspace owner - full access
	RoleManager Role = "manager" // Can review corrections and see all records
	RoleMember  Role = "member"  // Regular team member
)

type User struct {
	ID              string
	WorkspaceID     string
	Email           string
	Name            string
	PasswordHash    *string
	Role            Role
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOwner checks if the user owns the workspace
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// IsManager checks if the user is manager or owner
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleOwner
}

// CanReview checks if the user can review correction requests
func (u *User) CanReview() bool {
	return u.IsManager()
}
