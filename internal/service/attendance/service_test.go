package attendance

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtrack/teamtrack-backend-go/internal/domain/activity"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/attendance"
	"github.com/teamtrack/teamtrack-backend-go/internal/domain/user"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/clock"
	"github.com/teamtrack/teamtrack-backend-go/internal/pkg/sse"
)

const (
	testWorkspaceID = "11111111-1111-1111-1111-111111111111"
	testUserID      = "22222222-2222-2222-2222-222222222222"
	testManagerID   = "33333333-3333-3333-3333-333333333333"
)

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

func authedContext(t *testing.T, userID string, role user.Role) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(map[string]interface{}{
		"user_id":      userID,
		"workspace_id": testWorkspaceID,
		"role":         string(role),
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// ---- in-memory fakes ----

type fakeTxManager struct{}

func (fakeTxManager) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	records map[string]*attendance.Record
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Record)}
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	for _, existing := range r.records {
		if existing.UserID == record.UserID && existing.IsOpen() {
			// mirrors the partial unique index on (user_id) WHERE check_out_time IS NULL
			return attendance.Record{}, attendance.ErrConflict
		}
	}
	stored := record
	r.records[record.ID] = &stored
	return stored, nil
}

func (r *fakeAttendanceRepo) GetByID(ctx context.Context, id string, workspaceID string) (attendance.Record, error) {
	record, ok := r.records[id]
	if !ok || record.WorkspaceID != workspaceID {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return *record, nil
}

func (r *fakeAttendanceRepo) FindOpenByUser(ctx context.Context, userID string) (*attendance.Record, error) {
	for _, record := range r.records {
		if record.UserID == userID && record.IsOpen() {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAttendanceRepo) FindOpenByUserForUpdate(ctx context.Context, userID string) (*attendance.Record, error) {
	return r.FindOpenByUser(ctx, userID)
}

func (r *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	if _, ok := r.records[record.ID]; !ok {
		return attendance.ErrRecordNotFound
	}
	stored := record
	r.records[record.ID] = &stored
	return nil
}

func (r *fakeAttendanceRepo) ListByUser(ctx context.Context, userID string, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) List(ctx context.Context, workspaceID string, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, record := range r.records {
		if record.WorkspaceID == workspaceID {
			out = append(out, *record)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAttendanceRepo) ListForPeriod(ctx context.Context, userID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, record := range r.records {
		if record.UserID == userID && !record.CheckInTime.Before(from) && record.CheckInTime.Before(to) {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInTime.Before(out[j].CheckInTime) })
	return out, nil
}

type fakeCorrectionRepo struct {
	corrections map[string]*attendance.CorrectionRequest
}

func newFakeCorrectionRepo() *fakeCorrectionRepo {
	return &fakeCorrectionRepo{corrections: make(map[string]*attendance.CorrectionRequest)}
}

func (r *fakeCorrectionRepo) Create(ctx context.Context, req attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	stored := req
	r.corrections[req.ID] = &stored
	return stored, nil
}

func (r *fakeCorrectionRepo) GetByID(ctx context.Context, id string, workspaceID string) (attendance.CorrectionRequest, error) {
	correction, ok := r.corrections[id]
	if !ok || correction.WorkspaceID != workspaceID {
		return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
	}
	return *correction, nil
}

func (r *fakeCorrectionRepo) GetByIDForUpdate(ctx context.Context, id string, workspaceID string) (attendance.CorrectionRequest, error) {
	return r.GetByID(ctx, id, workspaceID)
}

func (r *fakeCorrectionRepo) ListByUser(ctx context.Context, userID string) ([]attendance.CorrectionRequest, error) {
	var out []attendance.CorrectionRequest
	for _, correction := range r.corrections {
		if correction.UserID == userID {
			out = append(out, *correction)
		}
	}
	return out, nil
}

func (r *fakeCorrectionRepo) ListPending(ctx context.Context, workspaceID string) ([]attendance.CorrectionRequest, error) {
	var out []attendance.CorrectionRequest
	for _, correction := range r.corrections {
		if correction.WorkspaceID == workspaceID && correction.Status == attendance.CorrectionPending {
			out = append(out, *correction)
		}
	}
	return out, nil
}

func (r *fakeCorrectionRepo) Update(ctx context.Context, req attendance.CorrectionRequest) error {
	if _, ok := r.corrections[req.ID]; !ok {
		return attendance.ErrCorrectionNotFound
	}
	stored := req
	r.corrections[req.ID] = &stored
	return nil
}

type fakeSettingsRepo struct {
	settings map[string]*attendance.Settings // keyed by user ID
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]*attendance.Settings)}
}

func (r *fakeSettingsRepo) GetByUser(ctx context.Context, userID string) (*attendance.Settings, error) {
	settings, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	copied := *settings
	return &copied, nil
}

func (r *fakeSettingsRepo) Create(ctx context.Context, s attendance.Settings) (attendance.Settings, error) {
	stored := s
	r.settings[s.UserID] = &stored
	return stored, nil
}

func (r *fakeSettingsRepo) Update(ctx context.Context, s attendance.Settings) error {
	stored := s
	r.settings[s.UserID] = &stored
	return nil
}

type fakeSink struct {
	entries []activity.Entry
}

func (s *fakeSink) Record(ctx context.Context, entry activity.Entry) {
	s.entries = append(s.entries, entry)
}

type testHarness struct {
	service     attendance.AttendanceService
	clock       *clock.Frozen
	attendances *fakeAttendanceRepo
	corrections *fakeCorrectionRepo
	settings    *fakeSettingsRepo
	audit       *fakeSink
}

func newTestHarness(t *testing.T, now string) *testHarness {
	t.Helper()
	h := &testHarness{
		clock:       clock.NewFrozen(mustTime(t, now)),
		attendances: newFakeAttendanceRepo(),
		corrections: newFakeCorrectionRepo(),
		settings:    newFakeSettingsRepo(),
		audit:       &fakeSink{},
	}
	h.service = NewAttendanceService(
		fakeTxManager{},
		h.clock,
		testAttendanceConfig,
		h.attendances,
		h.corrections,
		h.settings,
		h.audit,
		sse.NewHub(),
	)
	return h
}

func (h *testHarness) seedRecord(record attendance.Record) attendance.Record {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.WorkspaceID == "" {
		record.WorkspaceID = testWorkspaceID
	}
	stored := record
	h.attendances.records[record.ID] = &stored
	return stored
}

// ---- check-in / check-out ----

func TestAttendanceService_CheckIn_Success(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	location := "HQ"
	resp, err := h.service.CheckIn(ctx, attendance.CheckInRequest{LocationName: &location})

	require.NoError(t, err)
	assert.Equal(t, testUserID, resp.UserID)
	assert.Equal(t, "2024-01-15T09:00:00Z", resp.CheckInTime)
	assert.Nil(t, resp.CheckOutTime)
	assert.False(t, resp.AutoCheckout)

	open, err := h.attendances.FindOpenByUser(ctx, testUserID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, resp.ID, open.ID)

	require.Len(t, h.audit.entries, 1)
	assert.Equal(t, activity.ActionCheckedIn, h.audit.entries[0].Action)
}

func TestAttendanceService_CheckIn_AlreadyCheckedIn(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	first, err := h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	h.clock.Advance(30 * time.Minute)
	_, err = h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	var alreadyCheckedIn *attendance.AlreadyCheckedInError
	require.ErrorAs(t, err, &alreadyCheckedIn)
	assert.Equal(t, first.ID, alreadyCheckedIn.Existing.ID)

	// the original record is unchanged and remains the only one
	assert.Len(t, h.attendances.records, 1)
	assert.Equal(t, mustTime(t, "2024-01-15T09:00:00Z"), alreadyCheckedIn.Existing.CheckInTime)
}

func TestAttendanceService_CheckOut_SameDayRoundTrip(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	notes := "done for today"
	resp, err := h.service.CheckOut(ctx, attendance.CheckOutRequest{Notes: &notes})

	require.NoError(t, err)
	require.NotNil(t, resp.TotalHours)
	assert.InDelta(t, 2.0, *resp.TotalHours, 0.001)
	assert.False(t, resp.AutoCheckout)
	require.NotNil(t, resp.CheckOutTime)
	assert.Equal(t, "2024-01-15T11:00:00Z", *resp.CheckOutTime)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, notes, *resp.Notes)
}

func TestAttendanceService_CheckOut_NotCheckedIn(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckOut_Twice(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	first, err := h.service.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	_, err = h.service.CheckOut(ctx, attendance.CheckOutRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	var alreadyCheckedOut *attendance.AlreadyCheckedOutError
	require.ErrorAs(t, err, &alreadyCheckedOut)
	assert.Equal(t, first.ID, alreadyCheckedOut.Closed.ID)
	require.NotNil(t, alreadyCheckedOut.Closed.CheckOutTime)
	assert.Equal(t, "2024-01-15T11:00:00Z", alreadyCheckedOut.Closed.CheckOutTime.Format(time.RFC3339))
}

func TestAttendanceService_CheckOut_YesterdaysSessionDoesNotCount(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	checkOut := mustTime(t, "2024-01-15T17:00:00Z")
	total := 8.0
	h.seedRecord(attendance.Record{
		UserID:       testUserID,
		CheckInTime:  mustTime(t, "2024-01-15T09:00:00Z"),
		CheckOutTime: &checkOut,
		TotalHours:   &total,
	})

	_, err := h.service.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckOut_ExplicitTimeBeforeCheckIn(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	h.clock.Advance(2 * time.Hour)
	explicit := "2024-01-15T08:00:00Z"
	_, err = h.service.CheckOut(ctx, attendance.CheckOutRequest{CheckOutTime: &explicit})
	assert.ErrorIs(t, err, attendance.ErrCheckOutBeforeIn)
}

func TestAttendanceService_CheckOut_MultiDayCapped(t *testing.T) {
	h := newTestHarness(t, "2024-01-17T10:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T01:00:00Z"),
	})

	resp, err := h.service.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.True(t, resp.AutoCheckout)
	require.NotNil(t, resp.CheckOutTime)
	assert.Equal(t, "2024-01-15T17:00:00Z", *resp.CheckOutTime)
	require.NotNil(t, resp.TotalHours)
	assert.Equal(t, 12.0, *resp.TotalHours) // 16h raw, capped
}

func TestAttendanceService_GetStatus(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	status, err := h.service.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.CanCheckIn)
	assert.False(t, status.CanCheckOut)
	assert.Nil(t, status.OpenRecord)

	_, err = h.service.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	status, err = h.service.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.CanCheckIn)
	assert.True(t, status.CanCheckOut)
	require.NotNil(t, status.OpenRecord)
}

// ---- auto-checkout sweep ----

func enabledSettings(userID, cutoff string) attendance.Settings {
	s := attendance.DefaultSettings(testWorkspaceID, userID)
	s.ID = uuid.NewString()
	s.AutoCheckoutEnabled = true
	s.AutoCheckoutTime = cutoff
	return s
}

func TestAttendanceService_AutoCheckoutSweep_Disabled(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T19:00:00Z")

	// no stored settings: defaults leave auto-checkout off
	_, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	assert.ErrorIs(t, err, attendance.ErrSweepDisabled)
}

func TestAttendanceService_AutoCheckoutSweep_NotDueReportsNextEligible(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T10:00:00Z")
	settings := enabledSettings(testUserID, "18:00")
	h.settings.settings[testUserID] = &settings

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	require.NoError(t, err)
	assert.False(t, resp.CheckedOut)
	require.NotNil(t, resp.NextEligibleAt)
	assert.Equal(t, "2024-01-15T18:00:00Z", *resp.NextEligibleAt)
}

func TestAttendanceService_AutoCheckoutSweep_NoOpenRecord(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T19:00:00Z")
	settings := enabledSettings(testUserID, "18:00")
	h.settings.settings[testUserID] = &settings

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	require.NoError(t, err)
	assert.False(t, resp.CheckedOut)
	assert.Nil(t, resp.Record)
}

func TestAttendanceService_AutoCheckoutSweep_SameDayClosesAtCutoff(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T19:30:00Z")
	settings := enabledSettings(testUserID, "18:00")
	h.settings.settings[testUserID] = &settings

	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T09:00:00Z"),
	})

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	require.NoError(t, err)
	assert.True(t, resp.CheckedOut)
	require.NotNil(t, resp.Record)
	require.NotNil(t, resp.Record.CheckOutTime)
	assert.Equal(t, "2024-01-15T18:00:00Z", *resp.Record.CheckOutTime)
	assert.True(t, resp.Record.AutoCheckout)
	require.NotNil(t, resp.Record.TotalHours)
	assert.Equal(t, 9.0, *resp.Record.TotalHours)
}

func TestAttendanceService_AutoCheckoutSweep_CheckInAfterCutoffClosesAtNow(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T20:00:00Z")
	settings := enabledSettings(testUserID, "18:00")
	h.settings.settings[testUserID] = &settings

	// checked in an hour after the configured cutoff
	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T19:00:00Z"),
	})

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	require.NoError(t, err)
	require.True(t, resp.CheckedOut)
	require.NotNil(t, resp.Record.CheckOutTime)
	assert.Equal(t, "2024-01-15T20:00:00Z", *resp.Record.CheckOutTime)
	assert.True(t, resp.Record.AutoCheckout)
	assert.Equal(t, 1.0, *resp.Record.TotalHours)
}

func TestAttendanceService_AutoCheckoutSweep_TwoDaysLate(t *testing.T) {
	h := newTestHarness(t, "2024-01-03T10:00:00Z")
	settings := enabledSettings(testUserID, "09:00")
	h.settings.settings[testUserID] = &settings

	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-01T09:00:00Z"),
	})

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, false)
	require.NoError(t, err)
	require.True(t, resp.CheckedOut)
	require.NotNil(t, resp.Record.CheckOutTime)
	assert.Equal(t, "2024-01-01T17:00:00Z", *resp.Record.CheckOutTime)
	assert.True(t, resp.Record.AutoCheckout)
	assert.Equal(t, 8.0, *resp.Record.TotalHours)
}

func TestAttendanceService_AutoCheckoutSweep_ForceBypassesSettings(t *testing.T) {
	h := newTestHarness(t, "2024-01-02T08:00:00Z")

	// check-in at 22:00 the previous day, no settings stored at all
	h.seedRecord(attendance.Record{
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-01T22:00:00Z"),
	})

	resp, err := h.service.AutoCheckoutSweep(context.Background(), testUserID, true)
	require.NoError(t, err)
	require.True(t, resp.CheckedOut)

	// 22:00 + 8h spills past midnight, so the checkout clamps to the end
	// of the check-in day.
	checkOut, err := time.Parse(time.RFC3339, *resp.Record.CheckOutTime)
	require.NoError(t, err)
	assert.True(t, checkOut.Before(mustTime(t, "2024-01-02T00:00:00Z")))
	assert.True(t, checkOut.After(mustTime(t, "2024-01-01T23:59:00Z")))
	assert.InDelta(t, 2.0, *resp.Record.TotalHours, 0.01)
}

// ---- settings ----

func TestAttendanceService_GetSettings_CreatesDefaults(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	resp, err := h.service.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8.0, resp.WorkHoursPerDay)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, resp.WorkDays)
	assert.False(t, resp.AutoCheckoutEnabled)
	assert.True(t, resp.ReminderEnabled)
	assert.Equal(t, "09:00", resp.ReminderTime)

	// the defaults were persisted on first read
	stored, err := h.settings.GetByUser(ctx, testUserID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAttendanceService_UpdateSettings_Partial(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	enabled := true
	cutoff := "19:30"
	resp, err := h.service.UpdateSettings(ctx, attendance.UpdateSettingsRequest{
		AutoCheckoutEnabled: &enabled,
		AutoCheckoutTime:    &cutoff,
	})

	require.NoError(t, err)
	assert.True(t, resp.AutoCheckoutEnabled)
	assert.Equal(t, "19:30", resp.AutoCheckoutTime)
	// untouched fields keep their defaults
	assert.Equal(t, 8.0, resp.WorkHoursPerDay)
	assert.True(t, resp.ReminderEnabled)
}

func TestAttendanceService_UpdateSettings_RejectsBadCutoff(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	cutoff := "25:99"
	_, err := h.service.UpdateSettings(ctx, attendance.UpdateSettingsRequest{AutoCheckoutTime: &cutoff})
	assert.Error(t, err)
}

// ---- corrections ----

func seedClosedRecord(t *testing.T, h *testHarness, userID string) attendance.Record {
	t.Helper()
	checkOut := mustTime(t, "2024-01-15T16:00:00Z")
	total := 6.5
	return h.seedRecord(attendance.Record{
		UserID:       userID,
		CheckInTime:  mustTime(t, "2024-01-15T09:30:00Z"),
		CheckOutTime: &checkOut,
		TotalHours:   &total,
	})
}

func TestAttendanceService_RequestCorrection_Success(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)
	record := seedClosedRecord(t, h, testUserID)

	in := "2024-01-15T09:00:00Z"
	out := "2024-01-15T17:00:00Z"
	resp, err := h.service.RequestCorrection(ctx, attendance.CreateCorrectionRequest{
		AttendanceID:          record.ID,
		RequestedCheckInTime:  &in,
		RequestedCheckOutTime: &out,
		Reason:                "badge reader was down all morning",
	})

	require.NoError(t, err)
	assert.Equal(t, string(attendance.CorrectionPending), resp.Status)
	assert.Equal(t, "2024-01-15T09:30:00Z", resp.OriginalCheckInTime)
	require.NotNil(t, resp.OriginalCheckOutTime)
	assert.Equal(t, "2024-01-15T16:00:00Z", *resp.OriginalCheckOutTime)
}

func TestAttendanceService_RequestCorrection_Forbidden(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)
	record := seedClosedRecord(t, h, "someone-else")

	in := "2024-01-15T09:00:00Z"
	_, err := h.service.RequestCorrection(ctx, attendance.CreateCorrectionRequest{
		AttendanceID:         record.ID,
		RequestedCheckInTime: &in,
		Reason:               "badge reader was down all morning",
	})
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

func TestAttendanceService_RequestCorrection_ReasonTooShort(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)
	record := seedClosedRecord(t, h, testUserID)

	in := "2024-01-15T09:00:00Z"
	_, err := h.service.RequestCorrection(ctx, attendance.CreateCorrectionRequest{
		AttendanceID:         record.ID,
		RequestedCheckInTime: &in,
		Reason:               "oops",
	})
	assert.Error(t, err)
}

func reviewSetup(t *testing.T, h *testHarness) (attendance.Record, attendance.CorrectionResponse) {
	t.Helper()
	memberCtx := authedContext(t, testUserID, user.RoleMember)
	record := seedClosedRecord(t, h, testUserID)

	in := "2024-01-15T09:00:00Z"
	out := "2024-01-15T17:00:00Z"
	correction, err := h.service.RequestCorrection(memberCtx, attendance.CreateCorrectionRequest{
		AttendanceID:          record.ID,
		RequestedCheckInTime:  &in,
		RequestedCheckOutTime: &out,
		Reason:                "badge reader was down all morning",
	})
	require.NoError(t, err)
	return record, correction
}

func TestAttendanceService_ReviewCorrection_ApproveOverwritesRecord(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	record, correction := reviewSetup(t, h)

	managerCtx := authedContext(t, testManagerID, user.RoleManager)
	resp, err := h.service.ReviewCorrection(managerCtx, attendance.ReviewCorrectionRequest{
		ID:       correction.ID,
		Decision: string(attendance.CorrectionApproved),
	})

	require.NoError(t, err)
	assert.Equal(t, string(attendance.CorrectionApproved), resp.Correction.Status)
	require.NotNil(t, resp.Correction.ReviewedBy)
	assert.Equal(t, testManagerID, *resp.Correction.ReviewedBy)
	require.NotNil(t, resp.Record)
	assert.Equal(t, "2024-01-15T09:00:00Z", resp.Record.CheckInTime)
	require.NotNil(t, resp.Record.CheckOutTime)
	assert.Equal(t, "2024-01-15T17:00:00Z", *resp.Record.CheckOutTime)
	require.NotNil(t, resp.Record.TotalHours)
	assert.Equal(t, 8.0, *resp.Record.TotalHours)

	// the stored record was overwritten atomically with the review
	stored, err := h.attendances.GetByID(context.Background(), record.ID, testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-01-15T09:00:00Z"), stored.CheckInTime)
	assert.Equal(t, 8.0, *stored.TotalHours)
}

func TestAttendanceService_ReviewCorrection_RejectLeavesRecordAlone(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	record, correction := reviewSetup(t, h)

	managerCtx := authedContext(t, testManagerID, user.RoleManager)
	notes := "times do not match the badge log"
	resp, err := h.service.ReviewCorrection(managerCtx, attendance.ReviewCorrectionRequest{
		ID:       correction.ID,
		Decision: string(attendance.CorrectionRejected),
		Notes:    &notes,
	})

	require.NoError(t, err)
	assert.Equal(t, string(attendance.CorrectionRejected), resp.Correction.Status)
	assert.Nil(t, resp.Record)

	stored, err := h.attendances.GetByID(context.Background(), record.ID, testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2024-01-15T09:30:00Z"), stored.CheckInTime)
	assert.Equal(t, 6.5, *stored.TotalHours)
}

func TestAttendanceService_ReviewCorrection_SecondReviewFails(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	record, correction := reviewSetup(t, h)

	managerCtx := authedContext(t, testManagerID, user.RoleManager)
	review := attendance.ReviewCorrectionRequest{
		ID:       correction.ID,
		Decision: string(attendance.CorrectionApproved),
	}
	_, err := h.service.ReviewCorrection(managerCtx, review)
	require.NoError(t, err)

	_, err = h.service.ReviewCorrection(managerCtx, review)
	assert.ErrorIs(t, err, attendance.ErrCorrectionNotPending)

	// the overwrite was not applied twice and the status never reverts
	stored, err := h.corrections.GetByID(context.Background(), correction.ID, testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, attendance.CorrectionApproved, stored.Status)

	storedRecord, err := h.attendances.GetByID(context.Background(), record.ID, testWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *storedRecord.TotalHours)
}

func TestAttendanceService_ReviewCorrection_MemberForbidden(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	_, correction := reviewSetup(t, h)

	memberCtx := authedContext(t, testUserID, user.RoleMember)
	_, err := h.service.ReviewCorrection(memberCtx, attendance.ReviewCorrectionRequest{
		ID:       correction.ID,
		Decision: string(attendance.CorrectionApproved),
	})
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

func TestAttendanceService_ListPendingCorrections_MemberForbidden(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	memberCtx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.ListPendingCorrections(memberCtx)
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

// ---- listing and statistics ----

func TestAttendanceService_ListAttendance_MemberForbidden(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	memberCtx := authedContext(t, testUserID, user.RoleMember)

	_, err := h.service.ListAttendance(memberCtx, attendance.RecordFilter{})
	assert.ErrorIs(t, err, attendance.ErrForbidden)
}

func TestAttendanceService_ListAttendance_ManagerAllowed(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	seedClosedRecord(t, h, testUserID)

	managerCtx := authedContext(t, testManagerID, user.RoleManager)
	resp, err := h.service.ListAttendance(managerCtx, attendance.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Len(t, resp.Records, 1)
}

func TestAttendanceService_GetStatistics(t *testing.T) {
	h := newTestHarness(t, "2024-01-08T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	closed := func(checkIn, checkOut string, total float64, auto bool) attendance.Record {
		out := mustTime(t, checkOut)
		return attendance.Record{
			UserID:       testUserID,
			CheckInTime:  mustTime(t, checkIn),
			CheckOutTime: &out,
			TotalHours:   &total,
			AutoCheckout: auto,
		}
	}

	// 2024-01-01 is a Monday; late threshold is 09:15.
	h.seedRecord(closed("2024-01-01T09:00:00Z", "2024-01-01T11:00:00Z", 2.0, false))
	h.seedRecord(closed("2024-01-02T09:30:00Z", "2024-01-02T17:30:00Z", 8.0, false))
	h.seedRecord(closed("2024-01-03T10:00:00Z", "2024-01-03T17:00:00Z", 7.0, true))
	// outside the requested period
	h.seedRecord(closed("2024-01-08T09:00:00Z", "2024-01-08T17:00:00Z", 8.0, false))

	stats, err := h.service.GetStatistics(ctx, attendance.StatsFilter{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-07",
	})

	require.NoError(t, err)
	assert.Equal(t, 17.0, stats.TotalHours)
	assert.Equal(t, 3, stats.DaysPresent)
	assert.Equal(t, 2, stats.LateDays)
	assert.Equal(t, 1, stats.AutoCheckouts)
	assert.Equal(t, 5, stats.WorkingDays) // Mon-Fri defaults
	assert.InDelta(t, 3.4, stats.AverageHoursPerDay, 0.001)
}

func TestAttendanceService_GetMyAttendance(t *testing.T) {
	h := newTestHarness(t, "2024-01-16T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	seedClosedRecord(t, h, testUserID)
	seedClosedRecord(t, h, "someone-else")

	resp, err := h.service.GetMyAttendance(ctx, attendance.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, testUserID, resp.Records[0].UserID)
}

func TestAttendanceService_CheckIn_ConcurrentInsertSurfacesConflict(t *testing.T) {
	h := newTestHarness(t, "2024-01-15T09:00:00Z")
	ctx := authedContext(t, testUserID, user.RoleMember)

	// Simulate a racing check-in that slips in between the locked read and
	// the insert: the unique-index backstop must surface as a conflict.
	h.attendances.records["race"] = &attendance.Record{
		ID:          "race",
		WorkspaceID: testWorkspaceID,
		UserID:      testUserID,
		CheckInTime: mustTime(t, "2024-01-15T08:59:59Z"),
	}
	// FindOpenByUserForUpdate sees it, so this path reports AlreadyCheckedIn;
	// drop the row lock result to force the insert to collide instead.
	repo := &racingAttendanceRepo{fakeAttendanceRepo: h.attendances}
	svc := NewAttendanceService(fakeTxManager{}, h.clock, testAttendanceConfig,
		repo, h.corrections, h.settings, h.audit, sse.NewHub())

	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, attendance.ErrConflict))
}

// racingAttendanceRepo pretends the locked read saw no open record, so the
// subsequent insert hits the unique-index backstop.
type racingAttendanceRepo struct {
	*fakeAttendanceRepo
}

func (r *racingAttendanceRepo) FindOpenByUserForUpdate(ctx context.Context, userID string) (*attendance.Record, error) {
	return nil, nil
}
