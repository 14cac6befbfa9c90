package attendance

import (
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/config"
)

// WorkdayPolicy is pure calendar math over the configured workday shape.
// All methods are deterministic; malformed input is rejected at the DTO
// layer, never here.
type WorkdayPolicy struct {
	workStartHour  int
	graceMinutes   int
	workdayEndHour int
}

func NewWorkdayPolicy(cfg config.AttendanceConfig) WorkdayPolicy {
	return WorkdayPolicy{
		workStartHour:  cfg.WorkStartHour,
		graceMinutes:   cfg.GraceMinutes,
		workdayEndHour: cfg.WorkdayEndHour,
	}
}

// DayBoundaries returns midnight of date's calendar day and the last
// instant of that day, in date's location.
func (p WorkdayPolicy) DayBoundaries(date time.Time) (start, end time.Time) {
	year, month, day := date.Date()
	start = time.Date(year, month, day, 0, 0, 0, 0, date.Location())
	end = start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func (p WorkdayPolicy) IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// LateThreshold returns the instant after which a check-in on date's
// calendar day counts as late: work start plus the grace period.
func (p WorkdayPolicy) LateThreshold(date time.Time) time.Time {
	year, month, day := date.Date()
	start := time.Date(year, month, day, p.workStartHour, 0, 0, 0, date.Location())
	return start.Add(time.Duration(p.graceMinutes) * time.Minute)
}

// WorkdayEnd returns the nominal end-of-work instant for date's calendar
// day, used to bound synthetic checkouts.
func (p WorkdayPolicy) WorkdayEnd(date time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, p.workdayEndHour, 0, 0, 0, date.Location())
}

// sameCalendarDay reports whether a and b fall on the same calendar day,
// evaluated in a's location.
func sameCalendarDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween returns how many calendar-day boundaries lie between
// from and to, evaluated in from's location. Zero means same day.
func calendarDaysBetween(from, to time.Time) int {
	to = to.In(from.Location())
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	f := time.Date(fy, fm, fd, 0, 0, 0, 0, from.Location())
	t := time.Date(ty, tm, td, 0, 0, 0, 0, from.Location())
	return int(t.Sub(f).Hours() / 24)
}
