package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/sse"
)

type fakeUserDirectory struct {
	autoCheckout []string
	reminders    []string
}

func (r *fakeUserDirectory) Create(ctx context.Context, u user.User) (user.User, error) {
	return u, nil
}
func (r *fakeUserDirectory) GetByID(ctx context.Context, id string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (r *fakeUserDirectory) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (r *fakeUserDirectory) GetByOAuthProviderID(ctx context.Context, provider, providerID string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (r *fakeUserDirectory) ListByWorkspace(ctx context.Context, workspaceID string) ([]user.User, error) {
	return nil, nil
}
func (r *fakeUserDirectory) ListWithAutoCheckout(ctx context.Context) ([]string, error) {
	return r.autoCheckout, nil
}
func (r *fakeUserDirectory) ListWithReminder(ctx context.Context) ([]string, error) {
	return r.reminders, nil
}
func (r *fakeUserDirectory) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return nil
}

type jobsHarness struct {
	*testHarness
	jobs  *Jobs
	users *fakeUserDirectory
	hub   *sse.Hub
}

func newJobsHarness(t *testing.T, now string) *jobsHarness {
	t.Helper()
	h := newTestHarness(t, now)
	users := &fakeUserDirectory{}
	hub := sse.NewHub()
	return &jobsHarness{
		testHarness: h,
		users:       users,
		hub:         hub,
		jobs:        NewJobs(users, h.settings, h.attendances, h.service, hub, h.clock, 15*time.Minute),
	}
}

func (h *jobsHarness) seedSettings(userID string, mutate func(*attendance.Settings)) {
	s := attendance.DefaultSettings(testWorkspaceID, userID)
	s.ID = "settings-" + userID
	if mutate != nil {
		mutate(&s)
	}
	stored := s
	h.settings.settings[userID] = &stored
}

func receiveEvent(t *testing.T, ch chan sse.Event) *sse.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return &ev
	default:
		return nil
	}
}

func TestJobs_AutoCheckoutSweep_ClosesStaleSession(t *testing.T) {
	h := newJobsHarness(t, "2024-01-15T19:00:00Z")
	h.users.autoCheckout = []string{testUserID}
	h.seedSettings(testUserID, func(s *attendance.Settings) {
		s.AutoCheckoutEnabled = true
		s.AutoCheckoutTime = "18:00"
	})
	seeded := h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T09:00:00Z"),
	})

	require.NoError(t, h.jobs.RunAutoCheckoutSweep(context.Background()))

	record, err := h.attendances.GetByID(context.Background(), seeded.ID, testWorkspaceID)
	require.NoError(t, err)
	require.NotNil(t, record.CheckOutTime)
	assert.Equal(t, "2024-01-15T18:00:00Z", record.CheckOutTime.Format(time.RFC3339))
	assert.True(t, record.AutoCheckout)
}

func TestJobs_AutoCheckoutSweep_SkipsDisabledUsers(t *testing.T) {
	h := newJobsHarness(t, "2024-01-15T19:00:00Z")
	h.users.autoCheckout = []string{testUserID}
	h.seedSettings(testUserID, nil) // defaults leave auto-checkout disabled
	seeded := h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T09:00:00Z"),
	})

	require.NoError(t, h.jobs.RunAutoCheckoutSweep(context.Background()))

	record, err := h.attendances.GetByID(context.Background(), seeded.ID, testWorkspaceID)
	require.NoError(t, err)
	assert.Nil(t, record.CheckOutTime)
}

func TestJobs_CheckInReminders_PublishesWhenDue(t *testing.T) {
	// 2024-01-15 is a Monday; default work days are Mon-Fri.
	h := newJobsHarness(t, "2024-01-15T09:05:00Z")
	h.users.reminders = []string{testUserID}
	h.seedSettings(testUserID, nil)

	ch, cleanup := h.hub.Subscribe(testUserID)
	defer cleanup()

	require.NoError(t, h.jobs.RunCheckInReminders(context.Background()))

	ev := receiveEvent(t, ch)
	require.NotNil(t, ev)
	assert.Equal(t, sse.EventCheckInReminder, ev.Event)
}

func TestJobs_CheckInReminders_SkipsCheckedInUser(t *testing.T) {
	h := newJobsHarness(t, "2024-01-15T09:05:00Z")
	h.users.reminders = []string{testUserID}
	h.seedSettings(testUserID, nil)
	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T08:30:00Z"),
	})

	ch, cleanup := h.hub.Subscribe(testUserID)
	defer cleanup()

	require.NoError(t, h.jobs.RunCheckInReminders(context.Background()))

	assert.Nil(t, receiveEvent(t, ch))
}

func TestJobs_CheckInReminders_OutsideWindow(t *testing.T) {
	h := newJobsHarness(t, "2024-01-15T10:00:00Z")
	h.users.reminders = []string{testUserID}
	h.seedSettings(testUserID, nil)

	ch, cleanup := h.hub.Subscribe(testUserID)
	defer cleanup()

	require.NoError(t, h.jobs.RunCheckInReminders(context.Background()))

	assert.Nil(t, receiveEvent(t, ch))
}

func TestJobs_CheckInReminders_SkipsWeekend(t *testing.T) {
	// 2024-01-13 is a Saturday.
	h := newJobsHarness(t, "2024-01-13T09:05:00Z")
	h.users.reminders = []string{testUserID}
	h.seedSettings(testUserID, nil)

	ch, cleanup := h.hub.Subscribe(testUserID)
	defer cleanup()

	require.NoError(t, h.jobs.RunCheckInReminders(context.Background()))

	assert.Nil(t, receiveEvent(t, ch))
}
