package attendance

import "context"

// AttendanceService defines business logic for the attendance subsystem.
type AttendanceService interface {
	// CheckIn opens a new session for the authenticated user. Fails with
	// AlreadyCheckedInError when an open session exists.
	CheckIn(ctx context.Context, req CheckInRequest) (RecordResponse, error)

	// CheckOut closes the authenticated user's open session.
	CheckOut(ctx context.Context, req CheckOutRequest) (RecordResponse, error)

	// GetStatus reports whether the authenticated user can check in or out.
	GetStatus(ctx context.Context) (StatusResponse, error)

	// AutoCheckoutSweep closes a user's stale open session according to their
	// settings. Force bypasses the enabled flag and the daily cutoff.
	AutoCheckoutSweep(ctx context.Context, userID string, force bool) (SweepResponse, error)

	// GetMyAttendance lists the authenticated user's records.
	GetMyAttendance(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// ListAttendance lists workspace records (manager/owner).
	ListAttendance(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// GetSettings reads the user's settings, creating defaults on first read.
	GetSettings(ctx context.Context) (SettingsResponse, error)

	// UpdateSettings applies a partial settings update.
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// RequestCorrection creates a pending correction request for one of the
	// authenticated user's own records.
	RequestCorrection(ctx context.Context, req CreateCorrectionRequest) (CorrectionResponse, error)

	// GetMyCorrections lists the authenticated user's correction requests.
	GetMyCorrections(ctx context.Context) ([]CorrectionResponse, error)

	// ListPendingCorrections lists reviewable requests (manager/owner).
	ListPendingCorrections(ctx context.Context) ([]CorrectionResponse, error)

	// ReviewCorrection approves or rejects a pending request; approval
	// overwrites the owning record's times and recomputes total hours.
	ReviewCorrection(ctx context.Context, req ReviewCorrectionRequest) (ReviewCorrectionResponse, error)

	// GetStatistics summarizes the authenticated user's attendance over a period.
	GetStatistics(ctx context.Context, filter StatsFilter) (StatsResponse, error)
}
