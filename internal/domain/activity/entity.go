package activity

import "time"

// Entry is a single audit-trail event.
type Entry struct {
	ID          string
	WorkspaceID string
	UserID      string
	Action      string // e.g. "checked-in", "checked-out", "correction-approved"
	EntityType  string // e.g. "attendance", "project", "task"
	EntityID    string
	Description string
	CreatedAt   time.Time

	// DTO / Join
	UserName *string
}

// Actions recorded by the attendance subsystem.
const (
	ActionCheckedIn           = "checked-in"
	ActionCheckedOut          = "checked-out"
	ActionAutoCheckedOut      = "auto-checked-out"
	ActionCorrectionRequested = "correction-requested"
	ActionCorrectionApproved  = "correction-approved"
	ActionCorrectionRejected  = "correction-rejected"
	ActionSettingsUpdated     = "settings-updated"

	ActionProjectCreated = "project-created"
	ActionProjectUpdated = "project-updated"
	ActionProjectDeleted = "project-deleted"
	ActionMemberAdded    = "member-added"
	ActionMemberRemoved  = "member-removed"
	ActionTaskCreated    = "task-created"
	ActionTaskUpdated    = "task-updated"
	ActionTaskDeleted    = "task-deleted"
)

// Entity types referenced by audit entries.
const (
	EntityAttendance = "attendance"
	EntityCorrection = "attendance_correction"
	EntitySettings   = "attendance_settings"
	EntityProject    = "project"
	EntityTask       = "task"
)
