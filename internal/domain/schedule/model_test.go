package schedule_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"communityhub/internal/domain/schedule"
)

var weekStart = time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)

// TestConfig_Validate tests validation of Config.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     schedule.Config
		wantErr error
	}{
		{
			name: "valid",
			cfg:  schedule.Config{WeekStart: weekStart, ActiveDays: []string{schedule.Monday, schedule.Wednesday}},
		},
		{
			name: "non-monday week start is accepted",
			cfg:  schedule.Config{WeekStart: weekStart.AddDate(0, 0, 2), ActiveDays: []string{schedule.Friday}},
		},
		{
			name:    "zero week start",
			cfg:     schedule.Config{ActiveDays: []string{schedule.Monday}},
			wantErr: schedule.ErrEmptyWeekStart,
		},
		{
			name:    "no days",
			cfg:     schedule.Config{WeekStart: weekStart},
			wantErr: schedule.ErrNoActiveDays,
		},
		{
			name:    "unknown day",
			cfg:     schedule.Config{WeekStart: weekStart, ActiveDays: []string{"monday"}},
			wantErr: schedule.ErrInvalidDay,
		},
		{
			name:    "duplicate day",
			cfg:     schedule.Config{WeekStart: weekStart, ActiveDays: []string{"Mon", "Mon"}},
			wantErr: schedule.ErrDuplicateDay,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_SlotKeys checks two active days yield six keys in order.
func TestConfig_SlotKeys(t *testing.T) {
	cfg := schedule.Config{WeekStart: weekStart, ActiveDays: []string{"Mon", "Wed"}}
	want := []string{
		"Mon-9am-12pm", "Mon-1pm-3pm", "Mon-4pm-6pm",
		"Wed-9am-12pm", "Wed-1pm-3pm", "Wed-4pm-6pm",
	}
	if got := cfg.SlotKeys(); !reflect.DeepEqual(got, want) {
		t.Errorf("SlotKeys() = %v, want %v", got, want)
	}
}

func TestParseWeekStart(t *testing.T) {
	if _, err := schedule.ParseWeekStart(""); !errors.Is(err, schedule.ErrEmptyWeekStart) {
		t.Errorf("empty: %v", err)
	}
	if _, err := schedule.ParseWeekStart("13/10/2025"); !errors.Is(err, schedule.ErrInvalidDateForm) {
		t.Errorf("bad form: %v", err)
	}
	got, err := schedule.ParseWeekStart("2025-10-13")
	if err != nil || !got.Equal(weekStart) {
		t.Errorf("ParseWeekStart() = %v, %v", got, err)
	}
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC), weekStart},
		{time.Date(2025, 10, 16, 23, 0, 0, 0, time.UTC), weekStart},
		{time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC), weekStart},
		{time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), weekStart.AddDate(0, 0, 7)},
	}
	for _, tt := range tests {
		if got := schedule.MondayOf(tt.in); !got.Equal(tt.want) {
			t.Errorf("MondayOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
