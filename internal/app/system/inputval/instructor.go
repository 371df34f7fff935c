package inputval

import (
	"slices"
	"time"

	"github.com/dalemusser/groupbook/internal/domain/models"
)

// Instructor window rule identifiers.
const (
	RuleInvalidDay   = "invalid_day"
	RuleInvalidClock = "invalid_clock"
)

// ClockLayout is the wall-clock format of preference windows.
const ClockLayout = "15:04"

// PreferenceRules are applied, in order, on preference create and update.
var PreferenceRules = []Rule[models.InstructorPreference]{
	preferenceDay,
	preferenceClock,
	preferenceRange,
}

// ScheduleRules are applied, in order, on schedule create and update.
var ScheduleRules = []Rule[models.InstructorSchedule]{
	scheduleRange,
}

// ValidatePreference runs PreferenceRules against p.
func ValidatePreference(p models.InstructorPreference) *Result {
	return Run(p, PreferenceRules...)
}

// ValidateSchedule runs ScheduleRules against s.
func ValidateSchedule(s models.InstructorSchedule) *Result {
	return Run(s, ScheduleRules...)
}

func preferenceDay(p models.InstructorPreference) *FieldError {
	if !slices.Contains(models.DaysOfWeek, p.DayOfWeek) {
		return &FieldError{Field: "day_of_week", Rule: RuleInvalidDay, Message: "day_of_week must be a weekday name (monday … sunday)."}
	}
	return nil
}

func preferenceClock(p models.InstructorPreference) *FieldError {
	if _, err := time.Parse(ClockLayout, p.StartTime); err != nil {
		return &FieldError{Field: "start_time", Rule: RuleInvalidClock, Message: "start_time must be HH:MM."}
	}
	if _, err := time.Parse(ClockLayout, p.EndTime); err != nil {
		return &FieldError{Field: "end_time", Rule: RuleInvalidClock, Message: "end_time must be HH:MM."}
	}
	return nil
}

func preferenceRange(p models.InstructorPreference) *FieldError {
	start, err1 := time.Parse(ClockLayout, p.StartTime)
	end, err2 := time.Parse(ClockLayout, p.EndTime)
	if err1 != nil || err2 != nil {
		return nil // reported by preferenceClock
	}
	if !end.After(start) {
		return &FieldError{Field: "end_time", Rule: RuleInvalidTimeRange, Message: "end_time must be after start_time."}
	}
	return nil
}

func scheduleRange(s models.InstructorSchedule) *FieldError {
	if !s.EndTime.After(s.StartTime) {
		return &FieldError{Field: "end_time", Rule: RuleInvalidTimeRange, Message: "end_time must be after start_time."}
	}
	return nil
}
