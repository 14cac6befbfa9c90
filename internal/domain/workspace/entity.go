package workspace

import "time"

// Workspace is the tenant boundary. Every record in the system belongs to
// exactly one workspace.
type Workspace struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
