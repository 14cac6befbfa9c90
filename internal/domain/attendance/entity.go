package attendance

import "time"

// Record is a single work session. A record with no CheckOutTime is "open";
// at most one open record may exist per user.
type Record struct {
	ID          string
	WorkspaceID string
	UserID      string

	CheckInTime  time.Time
	CheckOutTime *time.Time
	TotalHours   *float64
	AutoCheckout bool

	CheckInLocationName *string
	CheckInIPAddress    *string
	CheckInDeviceInfo   *string

	CheckOutLocationName *string
	CheckOutIPAddress    *string
	CheckOutDeviceInfo   *string

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	UserName *string
}

// IsOpen reports whether the record still represents an active session.
func (r *Record) IsOpen() bool {
	return r.CheckOutTime == nil
}

type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
)

// CorrectionRequest is a user-submitted proposal to amend a record's times.
// Status only ever moves pending -> approved or pending -> rejected.
type CorrectionRequest struct {
	ID           string
	WorkspaceID  string
	AttendanceID string
	UserID       string

	OriginalCheckInTime  time.Time
	OriginalCheckOutTime *time.Time

	RequestedCheckInTime  *time.Time
	RequestedCheckOutTime *time.Time

	Reason string
	Status CorrectionStatus

	ReviewedBy  *string
	ReviewedAt  *time.Time
	ReviewNotes *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO / Join
	UserName *string
}

// Settings holds per-user attendance preferences, created lazily with
// defaults on first read.
type Settings struct {
	ID          string
	WorkspaceID string
	UserID      string

	WorkHoursPerDay     float64
	WorkDays            []int // weekday indices, 0=Sunday .. 6=Saturday
	AutoCheckoutEnabled bool
	AutoCheckoutTime    string // HH:MM
	ReminderEnabled     bool
	ReminderTime        string // HH:MM

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultSettings returns the documented defaults applied the first time
// settings are read for a user with none.
func DefaultSettings(workspaceID, userID string) Settings {
	return Settings{
		WorkspaceID:         workspaceID,
		UserID:              userID,
		WorkHoursPerDay:     8,
		WorkDays:            []int{1, 2, 3, 4, 5}, // Mon-Fri
		AutoCheckoutEnabled: false,
		AutoCheckoutTime:    "18:00",
		ReminderEnabled:     true,
		ReminderTime:        "09:00",
	}
}
