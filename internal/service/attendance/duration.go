package attendance

import (
	"math"
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/config"
)

// DurationCalculator resolves checkout instants for sessions the user did
// not close explicitly and converts sessions into capped decimal hours.
type DurationCalculator struct {
	policy               WorkdayPolicy
	defaultCheckoutHours float64
	maxHoursPerDay       float64
}

func NewDurationCalculator(policy WorkdayPolicy, cfg config.AttendanceConfig) DurationCalculator {
	return DurationCalculator{
		policy:               policy,
		defaultCheckoutHours: cfg.DefaultCheckoutHours,
		maxHoursPerDay:       cfg.MaxHoursPerDay,
	}
}

// ComputeCheckout decides the checkout instant for a session and whether
// it counts as system-determined:
//
//   - an explicit time on the same calendar day as check-in is used
//     verbatim, not auto;
//   - check-in and now on the same day: checkout = now, not auto;
//   - check-in exactly one day before now: the nominal workday end of the
//     check-in day when check-in preceded it, otherwise check-in plus the
//     default session length clamped to the end of the check-in day; auto;
//   - check-in more than one day before now: the workday end of the
//     check-in day unconditionally, so a forgotten session cannot keep
//     accumulating across days; auto.
func (c DurationCalculator) ComputeCheckout(checkIn, now time.Time, explicit *time.Time) (checkOut time.Time, auto bool) {
	if explicit != nil && sameCalendarDay(checkIn, *explicit) {
		return *explicit, false
	}

	switch days := calendarDaysBetween(checkIn, now); {
	case days <= 0:
		return now, false
	case days == 1:
		end := c.policy.WorkdayEnd(checkIn)
		if checkIn.Before(end) {
			return end, true
		}
		// Checked in after the workday already ended; grant the default
		// session length but never spill into the next day.
		synthetic := checkIn.Add(time.Duration(c.defaultCheckoutHours * float64(time.Hour)))
		if _, endOfDay := c.policy.DayBoundaries(checkIn); synthetic.After(endOfDay) {
			synthetic = endOfDay
		}
		return synthetic, true
	default:
		return c.policy.WorkdayEnd(checkIn), true
	}
}

// TotalHours returns the session length in decimal hours, capped at the
// configured daily maximum and never negative. Callers reject
// checkOut <= checkIn before persisting, so the zero floor is a backstop.
func (c DurationCalculator) TotalHours(checkIn, checkOut time.Time) float64 {
	raw := checkOut.Sub(checkIn).Hours()
	if raw < 0 {
		return 0
	}
	if raw > c.maxHoursPerDay {
		raw = c.maxHoursPerDay
	}
	return math.Round(raw*100) / 100
}
