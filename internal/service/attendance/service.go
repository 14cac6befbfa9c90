package attendance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"

	"github.com/teamtrack/teamtrack-backend-go/internal/config"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/clock"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/database"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/sse"
)

type AttendanceServiceImpl struct {
	txm   database.TxManager
	clock clock.Clock
	calc  DurationCalculator

	attendance.AttendanceRepository
	attendance.CorrectionRepository
	attendance.SettingsRepository

	audit activity.Sink
	hub   *sse.Hub
}

func NewAttendanceService(
	txm database.TxManager,
	clk clock.Clock,
	cfg config.AttendanceConfig,
	attendanceRepo attendance.AttendanceRepository,
	correctionRepo attendance.CorrectionRepository,
	settingsRepo attendance.SettingsRepository,
	audit activity.Sink,
	hub *sse.Hub,
) attendance.AttendanceService {
	policy := NewWorkdayPolicy(cfg)
	return &AttendanceServiceImpl{
		txm:                  txm,
		clock:                clk,
		calc:                 NewDurationCalculator(policy, cfg),
		AttendanceRepository: attendanceRepo,
		CorrectionRepository: correctionRepo,
		SettingsRepository:   settingsRepo,
		audit:                audit,
		hub:                  hub,
	}
}

// identityFromContext extracts the authenticated principal from the JWT
// claims carried in ctx.
func identityFromContext(ctx context.Context) (userID, workspaceID string, role user.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	workspaceID, ok = claims["workspace_id"].(string)
	if !ok || workspaceID == "" {
		return "", "", "", fmt.Errorf("workspace_id claim is missing or invalid")
	}

	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return "", "", "", fmt.Errorf("role claim is missing or invalid")
	}

	return userID, workspaceID, user.Role(roleStr), nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clock.Now()

	var created attendance.Record
	err = s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		open, err := s.AttendanceRepository.FindOpenByUserForUpdate(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to look up open session: %w", err)
		}
		if open != nil {
			return &attendance.AlreadyCheckedInError{Existing: *open}
		}

		created, err = s.AttendanceRepository.Create(txCtx, attendance.Record{
			ID:          uuid.NewString(),
			WorkspaceID: workspaceID,
			UserID:      userID,
			CheckInTime: now,

			CheckInLocationName: req.LocationName,
			CheckInIPAddress:    req.IPAddress,
			CheckInDeviceInfo:   req.DeviceInfo,
		})
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionCheckedIn,
		EntityType:  activity.EntityAttendance,
		EntityID:    created.ID,
		Description: fmt.Sprintf("Checked in at %s", now.Format("15:04")),
	})

	return mapRecordToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clock.Now()

	var closed attendance.Record
	var auto bool
	err = s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		open, err := s.AttendanceRepository.FindOpenByUserForUpdate(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to look up open session: %w", err)
		}
		if open == nil {
			// Distinguish a double check-out from never having checked in;
			// the former carries the closed record for client reconciliation.
			if last := s.lastClosedToday(txCtx, userID, now); last != nil {
				return &attendance.AlreadyCheckedOutError{Closed: *last}
			}
			return attendance.ErrNotCheckedIn
		}

		explicit := req.ExplicitTime()
		if explicit != nil && !explicit.After(open.CheckInTime) {
			return attendance.ErrCheckOutBeforeIn
		}

		checkOut, isAuto := s.calc.ComputeCheckout(open.CheckInTime, now, explicit)
		if !checkOut.After(open.CheckInTime) {
			return attendance.ErrCheckOutBeforeIn
		}
		total := s.calc.TotalHours(open.CheckInTime, checkOut)

		open.CheckOutTime = &checkOut
		open.TotalHours = &total
		open.AutoCheckout = isAuto
		open.CheckOutLocationName = req.LocationName
		open.CheckOutIPAddress = req.IPAddress
		open.CheckOutDeviceInfo = req.DeviceInfo
		if req.Notes != nil {
			open.Notes = req.Notes
		}

		if err := s.AttendanceRepository.Update(txCtx, *open); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}

		closed = *open
		auto = isAuto
		return nil
	})
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	action := activity.ActionCheckedOut
	description := fmt.Sprintf("Checked out after %.2f hours", *closed.TotalHours)
	if auto {
		action = activity.ActionAutoCheckedOut
		description = fmt.Sprintf("Automatically checked out after %.2f hours", *closed.TotalHours)
	}
	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      action,
		EntityType:  activity.EntityAttendance,
		EntityID:    closed.ID,
		Description: description,
	})

	return mapRecordToResponse(closed), nil
}

// lastClosedToday returns the newest record the user closed on now's
// calendar day, or nil. Lookup failures degrade to nil; the caller only
// uses this to pick the more specific error.
func (s *AttendanceServiceImpl) lastClosedToday(ctx context.Context, userID string, now time.Time) *attendance.Record {
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	todays, err := s.AttendanceRepository.ListForPeriod(ctx, userID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil
	}
	for i := len(todays) - 1; i >= 0; i-- {
		if todays[i].CheckOutTime != nil {
			return &todays[i]
		}
	}
	return nil
}

// GetStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatus(ctx context.Context) (attendance.StatusResponse, error) {
	userID, _, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	open, err := s.AttendanceRepository.FindOpenByUser(ctx, userID)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to look up open session: %w", err)
	}

	status := attendance.StatusResponse{
		HasOpenSession: open != nil,
		CanCheckIn:     open == nil,
		CanCheckOut:    open != nil,
	}
	if open != nil {
		resp := mapRecordToResponse(*open)
		status.OpenRecord = &resp
	}
	return status, nil
}

// AutoCheckoutSweep implements attendance.AttendanceService. It is invoked
// per user, either from the background sweep job or from the force endpoint,
// and never runs under request claims.
func (s *AttendanceServiceImpl) AutoCheckoutSweep(ctx context.Context, userID string, force bool) (attendance.SweepResponse, error) {
	now := s.clock.Now()

	settings, err := s.SettingsRepository.GetByUser(ctx, userID)
	if err != nil {
		return attendance.SweepResponse{}, fmt.Errorf("failed to load attendance settings: %w", err)
	}
	// Users without stored settings inherit the defaults, which leave
	// auto-checkout disabled.
	if !force && (settings == nil || !settings.AutoCheckoutEnabled) {
		return attendance.SweepResponse{}, attendance.ErrSweepDisabled
	}

	cutoff := now
	if settings != nil {
		if t, err := cutoffInstant(settings.AutoCheckoutTime, now); err == nil {
			cutoff = t
		}
	}
	if !force && now.Before(cutoff) {
		next := cutoff.Format(time.RFC3339)
		return attendance.SweepResponse{CheckedOut: false, NextEligibleAt: &next}, nil
	}

	var closed *attendance.Record
	err = s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		open, err := s.AttendanceRepository.FindOpenByUserForUpdate(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to look up open session: %w", err)
		}
		if open == nil {
			return nil
		}

		var checkOut time.Time
		if sameCalendarDay(open.CheckInTime, now) {
			// Same-day sweep closes at the configured cutoff; a forced sweep
			// before the cutoff simply uses the current instant. A check-in
			// after the cutoff also falls back to the current instant, else
			// the session could never be swept that day.
			checkOut = cutoff
			if now.Before(cutoff) || !cutoff.After(open.CheckInTime) {
				checkOut = now
			}
		} else {
			checkOut, _ = s.calc.ComputeCheckout(open.CheckInTime, now, nil)
		}
		if !checkOut.After(open.CheckInTime) {
			return attendance.ErrCheckOutBeforeIn
		}
		total := s.calc.TotalHours(open.CheckInTime, checkOut)

		open.CheckOutTime = &checkOut
		open.TotalHours = &total
		open.AutoCheckout = true

		if err := s.AttendanceRepository.Update(txCtx, *open); err != nil {
			return fmt.Errorf("failed to update attendance record: %w", err)
		}
		closed = open
		return nil
	})
	if err != nil {
		return attendance.SweepResponse{}, err
	}

	if closed == nil {
		return attendance.SweepResponse{CheckedOut: false}, nil
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: closed.WorkspaceID,
		UserID:      userID,
		Action:      activity.ActionAutoCheckedOut,
		EntityType:  activity.EntityAttendance,
		EntityID:    closed.ID,
		Description: fmt.Sprintf("Automatically checked out after %.2f hours", *closed.TotalHours),
	})

	resp := mapRecordToResponse(*closed)
	s.hub.Publish(userID, sse.Event{
		UserID: userID,
		Event:  sse.EventAutoCheckedOut,
		Data:   resp,
	})

	return attendance.SweepResponse{CheckedOut: true, Record: &resp}, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	userID, _, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	records, total, err := s.AttendanceRepository.ListByUser(ctx, userID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	_, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ListRecordsResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceViewAll) {
		return attendance.ListRecordsResponse{}, attendance.ErrForbidden
	}

	records, total, err := s.AttendanceRepository.List(ctx, workspaceID, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// GetSettings implements attendance.AttendanceService. Settings are created
// lazily with defaults the first time they are read for a user.
func (s *AttendanceServiceImpl) GetSettings(ctx context.Context) (attendance.SettingsResponse, error) {
	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	settings, err := s.getOrCreateSettings(ctx, workspaceID, userID)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	return mapSettingsToResponse(settings), nil
}

// UpdateSettings implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateSettings(ctx context.Context, req attendance.UpdateSettingsRequest) (attendance.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SettingsResponse{}, err
	}

	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	settings, err := s.getOrCreateSettings(ctx, workspaceID, userID)
	if err != nil {
		return attendance.SettingsResponse{}, err
	}

	if req.WorkHoursPerDay != nil {
		settings.WorkHoursPerDay = *req.WorkHoursPerDay
	}
	if req.WorkDays != nil {
		settings.WorkDays = req.WorkDays
	}
	if req.AutoCheckoutEnabled != nil {
		settings.AutoCheckoutEnabled = *req.AutoCheckoutEnabled
	}
	if req.AutoCheckoutTime != nil {
		settings.AutoCheckoutTime = *req.AutoCheckoutTime
	}
	if req.ReminderEnabled != nil {
		settings.ReminderEnabled = *req.ReminderEnabled
	}
	if req.ReminderTime != nil {
		settings.ReminderTime = *req.ReminderTime
	}

	if err := s.SettingsRepository.Update(ctx, settings); err != nil {
		return attendance.SettingsResponse{}, fmt.Errorf("failed to update attendance settings: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionSettingsUpdated,
		EntityType:  activity.EntitySettings,
		EntityID:    settings.ID,
		Description: "Updated attendance settings",
	})

	return mapSettingsToResponse(settings), nil
}

// RequestCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RequestCorrection(ctx context.Context, req attendance.CreateCorrectionRequest) (attendance.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionResponse{}, err
	}

	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}

	record, err := s.AttendanceRepository.GetByID(ctx, req.AttendanceID, workspaceID)
	if err != nil {
		return attendance.CorrectionResponse{}, err
	}
	if record.UserID != userID {
		return attendance.CorrectionResponse{}, attendance.ErrForbidden
	}

	requestedIn, requestedOut := req.RequestedTimes()

	created, err := s.CorrectionRepository.Create(ctx, attendance.CorrectionRequest{
		ID:           uuid.NewString(),
		WorkspaceID:  workspaceID,
		AttendanceID: record.ID,
		UserID:       userID,

		OriginalCheckInTime:  record.CheckInTime,
		OriginalCheckOutTime: record.CheckOutTime,

		RequestedCheckInTime:  requestedIn,
		RequestedCheckOutTime: requestedOut,

		Reason: req.Reason,
		Status: attendance.CorrectionPending,
	})
	if err != nil {
		return attendance.CorrectionResponse{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Action:      activity.ActionCorrectionRequested,
		EntityType:  activity.EntityCorrection,
		EntityID:    created.ID,
		Description: "Requested an attendance correction",
	})

	return mapCorrectionToResponse(created), nil
}

// GetMyCorrections implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyCorrections(ctx context.Context) ([]attendance.CorrectionResponse, error) {
	userID, _, _, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	corrections, err := s.CorrectionRepository.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list correction requests: %w", err)
	}

	responses := make([]attendance.CorrectionResponse, 0, len(corrections))
	for _, c := range corrections {
		responses = append(responses, mapCorrectionToResponse(c))
	}
	return responses, nil
}

// ListPendingCorrections implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListPendingCorrections(ctx context.Context) ([]attendance.CorrectionResponse, error) {
	_, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceReviewCorrections) {
		return nil, attendance.ErrForbidden
	}

	corrections, err := s.CorrectionRepository.ListPending(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending correction requests: %w", err)
	}

	responses := make([]attendance.CorrectionResponse, 0, len(corrections))
	for _, c := range corrections {
		responses = append(responses, mapCorrectionToResponse(c))
	}
	return responses, nil
}

// ReviewCorrection implements attendance.AttendanceService. Approval
// overwrites the owning record's times in the same transaction that moves
// the request out of pending, so a second reviewer always observes the
// reviewed status and fails instead of double-applying.
func (s *AttendanceServiceImpl) ReviewCorrection(ctx context.Context, req attendance.ReviewCorrectionRequest) (attendance.ReviewCorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ReviewCorrectionResponse{}, err
	}

	reviewerID, workspaceID, role, err := identityFromContext(ctx)
	if err != nil {
		return attendance.ReviewCorrectionResponse{}, err
	}

	if !user.HasPermission(role, user.PermissionAttendanceReviewCorrections) {
		return attendance.ReviewCorrectionResponse{}, attendance.ErrForbidden
	}

	now := s.clock.Now()

	var reviewed attendance.CorrectionRequest
	var updated *attendance.Record
	err = s.txm.WithinTransaction(ctx, func(txCtx context.Context) error {
		correction, err := s.CorrectionRepository.GetByIDForUpdate(txCtx, req.ID, workspaceID)
		if err != nil {
			return err
		}
		if correction.Status != attendance.CorrectionPending {
			return attendance.ErrCorrectionNotPending
		}

		correction.Status = attendance.CorrectionStatus(req.Decision)
		correction.ReviewedBy = &reviewerID
		correction.ReviewedAt = &now
		correction.ReviewNotes = req.Notes

		if correction.Status == attendance.CorrectionApproved {
			record, err := s.AttendanceRepository.GetByID(txCtx, correction.AttendanceID, workspaceID)
			if err != nil {
				return err
			}

			if correction.RequestedCheckInTime != nil {
				record.CheckInTime = *correction.RequestedCheckInTime
			}
			if correction.RequestedCheckOutTime != nil {
				record.CheckOutTime = correction.RequestedCheckOutTime
			}
			if record.CheckOutTime != nil {
				if !record.CheckOutTime.After(record.CheckInTime) {
					return attendance.ErrCheckOutBeforeIn
				}
				total := s.calc.TotalHours(record.CheckInTime, *record.CheckOutTime)
				record.TotalHours = &total
			}

			if err := s.AttendanceRepository.Update(txCtx, record); err != nil {
				return fmt.Errorf("failed to apply correction to attendance record: %w", err)
			}
			updated = &record
		}

		if err := s.CorrectionRepository.Update(txCtx, correction); err != nil {
			return fmt.Errorf("failed to update correction request: %w", err)
		}
		reviewed = correction
		return nil
	})
	if err != nil {
		return attendance.ReviewCorrectionResponse{}, err
	}

	action := activity.ActionCorrectionRejected
	if reviewed.Status == attendance.CorrectionApproved {
		action = activity.ActionCorrectionApproved
	}
	s.audit.Record(ctx, activity.Entry{
		WorkspaceID: workspaceID,
		UserID:      reviewerID,
		Action:      action,
		EntityType:  activity.EntityCorrection,
		EntityID:    reviewed.ID,
		Description: fmt.Sprintf("Correction request %s", reviewed.Status),
	})

	resp := attendance.ReviewCorrectionResponse{
		Correction: mapCorrectionToResponse(reviewed),
	}
	if updated != nil {
		recordResp := mapRecordToResponse(*updated)
		resp.Record = &recordResp
	}

	s.hub.Publish(reviewed.UserID, sse.Event{
		UserID: reviewed.UserID,
		Event:  sse.EventCorrectionReview,
		Data:   resp.Correction,
	})

	return resp, nil
}

// GetStatistics implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStatistics(ctx context.Context, filter attendance.StatsFilter) (attendance.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.StatsResponse{}, err
	}

	userID, workspaceID, _, err := identityFromContext(ctx)
	if err != nil {
		return attendance.StatsResponse{}, err
	}

	from, _ := time.Parse("2006-01-02", filter.StartDate)
	to, _ := time.Parse("2006-01-02", filter.EndDate)
	to = to.AddDate(0, 0, 1) // end date is inclusive

	records, err := s.AttendanceRepository.ListForPeriod(ctx, userID, from, to)
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	settings, err := s.getOrCreateSettings(ctx, workspaceID, userID)
	if err != nil {
		return attendance.StatsResponse{}, err
	}

	stats := attendance.StatsResponse{
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}

	presentDays := make(map[string]struct{})
	policy := s.calc.policy
	for _, r := range records {
		presentDays[r.CheckInTime.Format("2006-01-02")] = struct{}{}
		if r.TotalHours != nil {
			stats.TotalHours += *r.TotalHours
		}
		if r.CheckInTime.After(policy.LateThreshold(r.CheckInTime)) {
			stats.LateDays++
		}
		if r.AutoCheckout {
			stats.AutoCheckouts++
		}
	}
	stats.DaysPresent = len(presentDays)
	stats.TotalHours = math.Round(stats.TotalHours*100) / 100

	workDays := make(map[int]struct{}, len(settings.WorkDays))
	for _, d := range settings.WorkDays {
		workDays[d] = struct{}{}
	}
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		if _, ok := workDays[int(day.Weekday())]; ok {
			stats.WorkingDays++
		}
	}

	if stats.WorkingDays > 0 {
		stats.AverageHoursPerDay = math.Round(stats.TotalHours/float64(stats.WorkingDays)*100) / 100
	}

	return stats, nil
}

// getOrCreateSettings applies the defaults-on-first-read policy.
func (s *AttendanceServiceImpl) getOrCreateSettings(ctx context.Context, workspaceID, userID string) (attendance.Settings, error) {
	settings, err := s.SettingsRepository.GetByUser(ctx, userID)
	if err != nil {
		return attendance.Settings{}, fmt.Errorf("failed to load attendance settings: %w", err)
	}
	if settings != nil {
		return *settings, nil
	}

	defaults := attendance.DefaultSettings(workspaceID, userID)
	defaults.ID = uuid.NewString()
	created, err := s.SettingsRepository.Create(ctx, defaults)
	if err != nil {
		return attendance.Settings{}, fmt.Errorf("failed to create default attendance settings: %w", err)
	}
	return created, nil
}

// cutoffInstant resolves an HH:MM cutoff on the same calendar day as ref.
func cutoffInstant(hhmm string, ref time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	year, month, day := ref.Date()
	return time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, ref.Location()), nil
}

// timeToString formats an instant for API responses.
func timeToString(t time.Time) string {
	return t.Format(time.RFC3339)
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := timeToString(*t)
	return &formatted
}

func mapRecordToResponse(r attendance.Record) attendance.RecordResponse {
	return attendance.RecordResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		UserName:     r.UserName,
		CheckInTime:  timeToString(r.CheckInTime),
		CheckOutTime: timePtrToString(r.CheckOutTime),
		TotalHours:   r.TotalHours,
		AutoCheckout: r.AutoCheckout,

		CheckInLocationName:  r.CheckInLocationName,
		CheckOutLocationName: r.CheckOutLocationName,

		Notes:     r.Notes,
		CreatedAt: timeToString(r.CreatedAt),
		UpdatedAt: timeToString(r.UpdatedAt),
	}
}

func mapCorrectionToResponse(c attendance.CorrectionRequest) attendance.CorrectionResponse {
	return attendance.CorrectionResponse{
		ID:           c.ID,
		AttendanceID: c.AttendanceID,
		UserID:       c.UserID,
		UserName:     c.UserName,

		OriginalCheckInTime:  timeToString(c.OriginalCheckInTime),
		OriginalCheckOutTime: timePtrToString(c.OriginalCheckOutTime),

		RequestedCheckInTime:  timePtrToString(c.RequestedCheckInTime),
		RequestedCheckOutTime: timePtrToString(c.RequestedCheckOutTime),

		Reason: c.Reason,
		Status: string(c.Status),

		ReviewedBy:  c.ReviewedBy,
		ReviewedAt:  timePtrToString(c.ReviewedAt),
		ReviewNotes: c.ReviewNotes,

		CreatedAt: timeToString(c.CreatedAt),
	}
}

func mapSettingsToResponse(s attendance.Settings) attendance.SettingsResponse {
	return attendance.SettingsResponse{
		WorkHoursPerDay:     s.WorkHoursPerDay,
		WorkDays:            s.WorkDays,
		AutoCheckoutEnabled: s.AutoCheckoutEnabled,
		AutoCheckoutTime:    s.AutoCheckoutTime,
		ReminderEnabled:     s.ReminderEnabled,
		ReminderTime:        s.ReminderTime,
	}
}

func buildListResponse(records []attendance.Record, total int64, filter attendance.RecordFilter) attendance.ListRecordsResponse {
	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapRecordToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    responses,
	}
}
