package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/clock"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/sse"
)

// Jobs bundles the periodic attendance background work run by the scheduler:
// the auto-checkout sweep and check-in reminders.
type Jobs struct {
	users    user.UserRepository
	settings attendance.SettingsRepository
	records  attendance.AttendanceRepository
	svc      attendance.AttendanceService
	hub      *sse.Hub
	clock    clock.Clock

	// tick is the scheduler interval. A reminder fires in the first tick
	// whose instant lands inside [reminder time, reminder time + tick), so
	// each user gets at most one reminder per day.
	tick time.Duration
}

func NewJobs(
	userRepo user.UserRepository,
	settingsRepo attendance.SettingsRepository,
	attendanceRepo attendance.AttendanceRepository,
	svc attendance.AttendanceService,
	hub *sse.Hub,
	clk clock.Clock,
	tick time.Duration,
) *Jobs {
	return &Jobs{
		users:    userRepo,
		settings: settingsRepo,
		records:  attendanceRepo,
		svc:      svc,
		hub:      hub,
		clock:    clk,
		tick:     tick,
	}
}

// RunAutoCheckoutSweep sweeps every user who has auto-checkout enabled.
// Per-user failures are logged and skipped so one bad row cannot stall the
// whole sweep.
func (j *Jobs) RunAutoCheckoutSweep(ctx context.Context) error {
	userIDs, err := j.users.ListWithAutoCheckout(ctx)
	if err != nil {
		return fmt.Errorf("failed to list auto-checkout users: %w", err)
	}

	var swept int
	for _, userID := range userIDs {
		resp, err := j.svc.AutoCheckoutSweep(ctx, userID, false)
		if err != nil {
			// Disabled between listing and sweeping is a normal no-op.
			if errors.Is(err, attendance.ErrSweepDisabled) {
				continue
			}
			slog.Error("auto-checkout sweep failed for user", "user_id", userID, "error", err)
			continue
		}
		if resp.CheckedOut {
			swept++
		}
	}

	if swept > 0 {
		slog.Info("auto-checkout sweep completed", "candidates", len(userIDs), "checked_out", swept)
	}
	return nil
}

// RunCheckInReminders notifies users with reminders enabled who have not
// checked in yet on a configured work day.
func (j *Jobs) RunCheckInReminders(ctx context.Context) error {
	now := j.clock.Now()

	userIDs, err := j.users.ListWithReminder(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reminder users: %w", err)
	}

	for _, userID := range userIDs {
		settings, err := j.settings.GetByUser(ctx, userID)
		if err != nil {
			slog.Error("failed to load settings for reminder", "user_id", userID, "error", err)
			continue
		}
		if settings == nil || !settings.ReminderEnabled {
			continue
		}
		if !reminderDue(*settings, now, j.tick) {
			continue
		}

		due, err := j.hasNoSessionToday(ctx, userID, now)
		if err != nil {
			slog.Error("failed to check today's attendance for reminder", "user_id", userID, "error", err)
			continue
		}
		if !due {
			continue
		}

		j.hub.Publish(userID, sse.Event{
			UserID: userID,
			Event:  sse.EventCheckInReminder,
			Data: map[string]string{
				"message":       "You have not checked in yet today",
				"reminder_time": settings.ReminderTime,
			},
		})
	}

	return nil
}

// hasNoSessionToday reports whether the user has neither an open session nor
// any record checked in on now's calendar day.
func (j *Jobs) hasNoSessionToday(ctx context.Context, userID string, now time.Time) (bool, error) {
	open, err := j.records.FindOpenByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if open != nil {
		return false, nil
	}

	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	todays, err := j.records.ListForPeriod(ctx, userID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return false, err
	}
	return len(todays) == 0, nil
}

// reminderDue reports whether now falls in the single tick-wide window that
// starts at the user's configured reminder time on a configured work day.
func reminderDue(s attendance.Settings, now time.Time, tick time.Duration) bool {
	weekday := int(now.Weekday())
	onWorkDay := false
	for _, d := range s.WorkDays {
		if d == weekday {
			onWorkDay = true
			break
		}
	}
	if !onWorkDay {
		return false
	}

	remindAt, err := cutoffInstant(s.ReminderTime, now)
	if err != nil {
		return false
	}
	return !now.Before(remindAt) && now.Before(remindAt.Add(tick))
}
