package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"communityhub/internal/adapters/storage"
	"communityhub/internal/application/apperr"
	"communityhub/internal/application/validate"
	"communityhub/internal/domain/schedule"
	"communityhub/internal/domain/unavailable"
)

// ScheduleStore defines the store interface needed by the schedule orchestrators.
type ScheduleStore interface {
	Latest(ctx context.Context) (schedule.Config, error)
	Reconfigure(ctx context.Context, cfg schedule.Config) (schedule.Config, error)
}

// ReconfigureScheduleInput carries input for the reconfigure orchestrator.
type ReconfigureScheduleInput struct {
	WeekStart  string   `json:"weekStart" validate:"required,isodate"`
	ActiveDays []string `json:"activeDays" validate:"required,min=1,max=7,unique,dive,weekday"`
}

// ScheduleDeps holds dependencies for the schedule orchestrators.
type ScheduleDeps struct {
	Schedules ScheduleStore
	Now       func() time.Time
}

// ExecuteReconfigureSchedule replaces the timetable with active days × fixed periods.
// Every existing booking is destroyed. The week start is not required to be a Monday.
// PRE: caller is the administrator
// POST: slots are exactly the new keys, all free, and the new config is active; on error nothing changed
func ExecuteReconfigureSchedule(ctx context.Context, input ReconfigureScheduleInput, deps ScheduleDeps) (schedule.Config, error) {
	if err := validate.Struct(input); err != nil {
		return schedule.Config{}, err
	}
	weekStart, err := schedule.ParseWeekStart(input.WeekStart)
	if err != nil {
		return schedule.Config{}, validate.Domain("weekStart", err)
	}
	cfg := schedule.Config{WeekStart: weekStart, ActiveDays: input.ActiveDays, CreatedAt: deps.Now()}
	if err := cfg.Validate(); err != nil {
		return schedule.Config{}, validate.Domain("activeDays", err)
	}

	saved, err := deps.Schedules.Reconfigure(ctx, cfg)
	if err != nil {
		return schedule.Config{}, apperr.Internal(err)
	}
	slog.Info("schedule_event", "event", "reconfigured", "week_start", input.WeekStart,
		"active_days", input.ActiveDays, "slots", len(cfg.SlotKeys()))
	return saved, nil
}

// ExecuteEnsureSchedule creates the default week when no configuration exists yet.
// PRE: migrations applied
// POST: a configuration exists; returns true when one was created
func ExecuteEnsureSchedule(ctx context.Context, deps ScheduleDeps) (bool, error) {
	_, err := deps.Schedules.Latest(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, apperr.Internal(err)
	}
	now := deps.Now()
	cfg := schedule.Config{
		WeekStart:  schedule.MondayOf(now),
		ActiveDays: schedule.DefaultActiveDays,
		CreatedAt:  now,
	}
	if _, err := deps.Schedules.Reconfigure(ctx, cfg); err != nil {
		return false, apperr.Internal(err)
	}
	slog.Info("schedule_event", "event", "seeded", "week_start", cfg.WeekStart.Format(schedule.DateFormat))
	return true, nil
}

// UnavailableStore defines the store interface needed by the unavailable-date orchestrators.
type UnavailableStore interface {
	Add(ctx context.Context, d unavailable.UnavailableDate) (bool, error)
	Remove(ctx context.Context, d unavailable.UnavailableDate) (bool, error)
}

// UnavailableDateInput carries the date to add or remove.
type UnavailableDateInput struct {
	Date string `json:"date" validate:"required,isodate"`
}

// UnavailableDeps holds dependencies for the unavailable-date orchestrators.
type UnavailableDeps struct {
	Dates UnavailableStore
}

// ExecuteSetUnavailableDate marks a date unavailable. Adding a known date is a no-op.
// PRE: caller is the administrator
// POST: date is in the set; returns false when it already was
func ExecuteSetUnavailableDate(ctx context.Context, input UnavailableDateInput, deps UnavailableDeps) (bool, error) {
	d, err := parseUnavailable(input)
	if err != nil {
		return false, err
	}
	added, err := deps.Dates.Add(ctx, d)
	if err != nil {
		return false, apperr.Internal(err)
	}
	slog.Info("schedule_event", "event", "date_blocked", "date", d.String(), "added", added)
	return added, nil
}

// ExecuteRemoveUnavailableDate clears a date. Removing an unknown date succeeds.
// PRE: caller is the administrator
// POST: date is not in the set; returns whether it was present
func ExecuteRemoveUnavailableDate(ctx context.Context, input UnavailableDateInput, deps UnavailableDeps) (bool, error) {
	d, err := parseUnavailable(input)
	if err != nil {
		return false, err
	}
	removed, err := deps.Dates.Remove(ctx, d)
	if err != nil {
		return false, apperr.Internal(err)
	}
	slog.Info("schedule_event", "event", "date_unblocked", "date", d.String(), "removed", removed)
	return removed, nil
}

func parseUnavailable(input UnavailableDateInput) (unavailable.UnavailableDate, error) {
	if err := validate.Struct(input); err != nil {
		return unavailable.UnavailableDate{}, err
	}
	d, err := unavailable.Parse(input.Date)
	if err != nil {
		return unavailable.UnavailableDate{}, validate.Domain("date", err)
	}
	return d, nil
}
