package attendance

import (
	"strings"
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/validator"
)

// MinReasonLength is the shortest accepted correction reason.
const MinReasonLength = 10

// ========================================
// CHECK-IN / CHECK-OUT DTOs
// ========================================

type CheckInRequest struct {
	LocationName *string `json:"location_name,omitempty"`
	IPAddress    *string `json:"-"`
	DeviceInfo   *string `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.LocationName != nil && len(*r.LocationName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location_name",
			Message: "location_name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CheckOutRequest struct {
	// CheckOutTime, when present, is an explicit RFC3339 checkout instant.
	CheckOutTime *string `json:"check_out_time,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	LocationName *string `json:"location_name,omitempty"`
	IPAddress    *string `json:"-"`
	DeviceInfo   *string `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CheckOutTime != nil && *r.CheckOutTime != "" {
		if _, valid := validator.IsValidDateTime(*r.CheckOutTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_time",
				Message: "check_out_time must be an RFC3339 timestamp",
			})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	if r.LocationName != nil && len(*r.LocationName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "location_name",
			Message: "location_name must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ExplicitTime returns the parsed explicit checkout instant, if any.
func (r *CheckOutRequest) ExplicitTime() *time.Time {
	if r.CheckOutTime == nil || *r.CheckOutTime == "" {
		return nil
	}
	t, valid := validator.IsValidDateTime(*r.CheckOutTime)
	if !valid {
		return nil
	}
	t = t.UTC()
	return &t
}

type SweepRequest struct {
	Force bool `json:"force"`
}

type SweepResponse struct {
	CheckedOut     bool            `json:"checked_out"`
	NextEligibleAt *string         `json:"next_eligible_at,omitempty"`
	Record         *RecordResponse `json:"record,omitempty"`
}

type RecordResponse struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	UserName     *string  `json:"user_name,omitempty"`
	CheckInTime  string   `json:"check_in_time"`
	CheckOutTime *string  `json:"check_out_time,omitempty"`
	TotalHours   *float64 `json:"total_hours,omitempty"`
	AutoCheckout bool     `json:"auto_checkout"`

	CheckInLocationName  *string `json:"check_in_location_name,omitempty"`
	CheckOutLocationName *string `json:"check_out_location_name,omitempty"`

	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type StatusResponse struct {
	HasOpenSession bool            `json:"has_open_session"`
	OpenRecord     *RecordResponse `json:"open_record,omitempty"`
	CanCheckIn     bool            `json:"can_check_in"`
	CanCheckOut    bool            `json:"can_check_out"`
}

// ========================================
// LIST / FILTER DTOs
// ========================================

type RecordFilter struct {
	UserID    *string `json:"user_id,omitempty"`    // admin list only
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortBy    string `json:"sort_by"`    // check_in_time, check_out_time, total_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *RecordFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"check_in_time", "check_out_time", "total_hours"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: check_in_time, check_out_time, total_hours",
			})
		}
	} else {
		f.SortBy = "check_in_time" // Default sort
	}

	if f.SortOrder != "" {
		validSortOrders := []string{"asc", "desc"}
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), validSortOrders) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // Default descending (newest first)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}

// ========================================
// SETTINGS DTOs
// ========================================

type SettingsResponse struct {
	WorkHoursPerDay     float64 `json:"work_hours_per_day"`
	WorkDays            []int   `json:"work_days"`
	AutoCheckoutEnabled bool    `json:"auto_checkout_enabled"`
	AutoCheckoutTime    string  `json:"auto_checkout_time"`
	ReminderEnabled     bool    `json:"reminder_enabled"`
	ReminderTime        string  `json:"reminder_time"`
}

type UpdateSettingsRequest struct {
	WorkHoursPerDay     *float64 `json:"work_hours_per_day,omitempty"`
	WorkDays            []int    `json:"work_days,omitempty"`
	AutoCheckoutEnabled *bool    `json:"auto_checkout_enabled,omitempty"`
	AutoCheckoutTime    *string  `json:"auto_checkout_time,omitempty"`
	ReminderEnabled     *bool    `json:"reminder_enabled,omitempty"`
	ReminderTime        *string  `json:"reminder_time,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WorkHoursPerDay != nil && (*r.WorkHoursPerDay <= 0 || *r.WorkHoursPerDay > 24) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_hours_per_day",
			Message: "work_hours_per_day must be between 0 and 24",
		})
	}

	if r.WorkDays != nil && !validator.IsValidWeekdaySet(r.WorkDays) {
		errs = append(errs, validator.ValidationError{
			Field:   "work_days",
			Message: "work_days must be a non-empty set of weekday indices 0-6",
		})
	}

	if r.AutoCheckoutTime != nil && !validator.IsValidClockTime(*r.AutoCheckoutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "auto_checkout_time",
			Message: "auto_checkout_time must be in HH:MM format",
		})
	}

	if r.ReminderTime != nil && !validator.IsValidClockTime(*r.ReminderTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "reminder_time",
			Message: "reminder_time must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// CORRECTION DTOs
// ========================================

type CreateCorrectionRequest struct {
	AttendanceID          string  `json:"attendance_id"`
	RequestedCheckInTime  *string `json:"requested_check_in_time,omitempty"`  // RFC3339
	RequestedCheckOutTime *string `json:"requested_check_out_time,omitempty"` // RFC3339
	Reason                string  `json:"reason"`
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{
			Field:   "attendance_id",
			Message: "attendance_id must be a valid UUID",
		})
	}

	if len(strings.TrimSpace(r.Reason)) < MinReasonLength {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be at least 10 characters",
		})
	}

	hasIn := r.RequestedCheckInTime != nil && *r.RequestedCheckInTime != ""
	hasOut := r.RequestedCheckOutTime != nil && *r.RequestedCheckOutTime != ""

	if !hasIn && !hasOut {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_check_in_time",
			Message: "at least one of requested_check_in_time or requested_check_out_time is required",
		})
	}

	var in, out time.Time
	var inOK, outOK bool
	if hasIn {
		if in, inOK = validator.IsValidDateTime(*r.RequestedCheckInTime); !inOK {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_in_time",
				Message: "requested_check_in_time must be an RFC3339 timestamp",
			})
		}
	}
	if hasOut {
		if out, outOK = validator.IsValidDateTime(*r.RequestedCheckOutTime); !outOK {
			errs = append(errs, validator.ValidationError{
				Field:   "requested_check_out_time",
				Message: "requested_check_out_time must be an RFC3339 timestamp",
			})
		}
	}

	if inOK && outOK && !out.After(in) {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_check_out_time",
			Message: "requested_check_out_time must be after requested_check_in_time",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RequestedTimes returns the parsed requested instants, nil when absent.
func (r *CreateCorrectionRequest) RequestedTimes() (in *time.Time, out *time.Time) {
	if r.RequestedCheckInTime != nil && *r.RequestedCheckInTime != "" {
		if t, ok := validator.IsValidDateTime(*r.RequestedCheckInTime); ok {
			t = t.UTC()
			in = &t
		}
	}
	if r.RequestedCheckOutTime != nil && *r.RequestedCheckOutTime != "" {
		if t, ok := validator.IsValidDateTime(*r.RequestedCheckOutTime); ok {
			t = t.UTC()
			out = &t
		}
	}
	return in, out
}

type ReviewCorrectionRequest struct {
	ID       string  `json:"-"`
	Decision string  `json:"decision"` // approved, rejected
	Notes    *string `json:"notes,omitempty"`
}

func (r *ReviewCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Decision != string(CorrectionApproved) && r.Decision != string(CorrectionRejected) {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: approved, rejected",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CorrectionResponse struct {
	ID           string  `json:"id"`
	AttendanceID string  `json:"attendance_id"`
	UserID       string  `json:"user_id"`
	UserName     *string `json:"user_name,omitempty"`

	OriginalCheckInTime  string  `json:"original_check_in_time"`
	OriginalCheckOutTime *string `json:"original_check_out_time,omitempty"`

	RequestedCheckInTime  *string `json:"requested_check_in_time,omitempty"`
	RequestedCheckOutTime *string `json:"requested_check_out_time,omitempty"`

	Reason string `json:"reason"`
	Status string `json:"status"`

	ReviewedBy  *string `json:"reviewed_by,omitempty"`
	ReviewedAt  *string `json:"reviewed_at,omitempty"`
	ReviewNotes *string `json:"review_notes,omitempty"`

	CreatedAt string `json:"created_at"`
}

type ReviewCorrectionResponse struct {
	Correction CorrectionResponse `json:"correction"`
	Record     *RecordResponse    `json:"record,omitempty"`
}

// ========================================
// STATISTICS DTOs
// ========================================

type StatsFilter struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"end_date"`   // YYYY-MM-DD, inclusive
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(f.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StatsResponse struct {
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	TotalHours         float64 `json:"total_hours"`
	DaysPresent        int     `json:"days_present"`
	LateDays           int     `json:"late_days"`
	AutoCheckouts      int     `json:"auto_checkouts"`
	WorkingDays        int     `json:"working_days"`
	AverageHoursPerDay float64 `json:"average_hours_per_day"`
}
