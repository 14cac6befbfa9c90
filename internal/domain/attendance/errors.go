package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn  = errors.New("an open attendance session already exists")
	ErrNotCheckedIn      = errors.New("no open attendance session")
	ErrAlreadyCheckedOut = errors.New("attendance session already closed")
	ErrCheckOutBeforeIn  = errors.New("check-out time must be after check-in time")

	// General errors
	ErrRecordNotFound       = errors.New("attendance record not found")
	ErrCorrectionNotFound   = errors.New("correction request not found")
	ErrForbidden            = errors.New("not allowed to access this attendance record")
	ErrCorrectionNotPending = errors.New("correction request has already been reviewed")
	ErrConflict             = errors.New("attendance record was modified concurrently")
	ErrSweepDisabled        = errors.New("auto-checkout is disabled for this user")
)

// AlreadyCheckedInError carries the existing open record so clients can
// reconcile their local state. Unwraps to ErrAlreadyCheckedIn.
type AlreadyCheckedInError struct {
	Existing Record
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("already checked in since %s", e.Existing.CheckInTime.Format("2006-01-02 15:04:05"))
}

func (e *AlreadyCheckedInError) Unwrap() error {
	return ErrAlreadyCheckedIn
}

// AlreadyCheckedOutError carries the most recently closed record when a
// check-out finds today's session already closed. Unwraps to
// ErrAlreadyCheckedOut.
type AlreadyCheckedOutError struct {
	Closed Record
}

func (e *AlreadyCheckedOutError) Error() string {
	return fmt.Sprintf("already checked out at %s", e.Closed.CheckOutTime.Format("2006-01-02 15:04:05"))
}

func (e *AlreadyCheckedOutError) Unwrap() error {
	return ErrAlreadyCheckedOut
}
