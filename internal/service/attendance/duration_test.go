package attendance

import (
	"testing"
	"time"
)

func newTestCalculator() DurationCalculator {
	return NewDurationCalculator(NewWorkdayPolicy(testAttendanceConfig), testAttendanceConfig)
}

func TestDurationCalculator_ComputeCheckout(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name         string
		checkIn      string
		now          string
		explicit     string // empty means none supplied
		wantCheckOut string
		wantAuto     bool
	}{
		{
			name:         "explicit same-day time used verbatim",
			checkIn:      "2024-01-15T09:00:00Z",
			now:          "2024-01-15T18:30:00Z",
			explicit:     "2024-01-15T17:45:00Z",
			wantCheckOut: "2024-01-15T17:45:00Z",
			wantAuto:     false,
		},
		{
			name:         "explicit time on another day falls back to day rules",
			checkIn:      "2024-01-15T09:00:00Z",
			now:          "2024-01-15T12:00:00Z",
			explicit:     "2024-01-16T10:00:00Z",
			wantCheckOut: "2024-01-15T12:00:00Z",
			wantAuto:     false,
		},
		{
			name:         "same day uses now",
			checkIn:      "2024-01-15T09:00:00Z",
			now:          "2024-01-15T11:00:00Z",
			wantCheckOut: "2024-01-15T11:00:00Z",
			wantAuto:     false,
		},
		{
			name:         "one day late closes at workday end",
			checkIn:      "2024-01-15T09:00:00Z",
			now:          "2024-01-16T08:00:00Z",
			wantCheckOut: "2024-01-15T17:00:00Z",
			wantAuto:     true,
		},
		{
			name:         "more than one day late always closes at workday end",
			checkIn:      "2024-01-01T09:00:00Z",
			now:          "2024-01-03T10:00:00Z",
			wantCheckOut: "2024-01-01T17:00:00Z",
			wantAuto:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkIn := mustTime(t, tt.checkIn)
			now := mustTime(t, tt.now)

			var explicit *time.Time
			if tt.explicit != "" {
				e := mustTime(t, tt.explicit)
				explicit = &e
			}

			gotCheckOut, gotAuto := calc.ComputeCheckout(checkIn, now, explicit)
			if gotAuto != tt.wantAuto {
				t.Errorf("auto = %v, want %v", gotAuto, tt.wantAuto)
			}
			if want := mustTime(t, tt.wantCheckOut); !gotCheckOut.Equal(want) {
				t.Errorf("checkOut = %v, want %v", gotCheckOut, want)
			}
		})
	}
}

func TestDurationCalculator_ComputeCheckout_LateNightClamp(t *testing.T) {
	calc := newTestCalculator()

	// Check-in at 22:00 swept the next morning: 22:00 + 8h would land on the
	// next day, so the checkout clamps to the end of the check-in day.
	checkIn := mustTime(t, "2024-01-01T22:00:00Z")
	now := mustTime(t, "2024-01-02T08:00:00Z")

	gotCheckOut, gotAuto := calc.ComputeCheckout(checkIn, now, nil)
	if !gotAuto {
		t.Fatal("expected an auto checkout")
	}
	if _, endOfDay := calc.policy.DayBoundaries(checkIn); !gotCheckOut.Equal(endOfDay) {
		t.Errorf("checkOut = %v, want end of day %v", gotCheckOut, endOfDay)
	}
	if gotCheckOut.After(mustTime(t, "2024-01-02T00:00:00Z")) {
		t.Errorf("checkOut %v must not spill into the next day", gotCheckOut)
	}
}

func TestDurationCalculator_ComputeCheckout_DefaultSessionFitsDay(t *testing.T) {
	cfg := testAttendanceConfig
	cfg.DefaultCheckoutHours = 4
	calc := NewDurationCalculator(NewWorkdayPolicy(cfg), cfg)

	// Check-in at 18:00 (after workday end) swept the next day: the default
	// session length fits inside the check-in day, so it is used as-is.
	checkIn := mustTime(t, "2024-01-01T18:00:00Z")
	now := mustTime(t, "2024-01-02T08:00:00Z")

	gotCheckOut, gotAuto := calc.ComputeCheckout(checkIn, now, nil)
	if !gotAuto {
		t.Fatal("expected an auto checkout")
	}
	if want := mustTime(t, "2024-01-01T22:00:00Z"); !gotCheckOut.Equal(want) {
		t.Errorf("checkOut = %v, want %v", gotCheckOut, want)
	}
}

func TestDurationCalculator_TotalHours(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name     string
		checkIn  string
		checkOut string
		expected float64
	}{
		{"two hour session", "2024-01-15T09:00:00Z", "2024-01-15T11:00:00Z", 2.0},
		{"full workday", "2024-01-15T09:00:00Z", "2024-01-15T17:00:00Z", 8.0},
		{"fractional hours round to two decimals", "2024-01-15T09:00:00Z", "2024-01-15T09:20:00Z", 0.33},
		{"capped at max hours per day", "2024-01-15T06:00:00Z", "2024-01-15T23:00:00Z", 12.0},
		{"multi-day session still capped", "2024-01-13T09:00:00Z", "2024-01-15T17:00:00Z", 12.0},
		{"inverted interval floors at zero", "2024-01-15T11:00:00Z", "2024-01-15T09:00:00Z", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.TotalHours(mustTime(t, tt.checkIn), mustTime(t, tt.checkOut))
			if got != tt.expected {
				t.Errorf("TotalHours = %v, want %v", got, tt.expected)
			}
		})
	}
}
