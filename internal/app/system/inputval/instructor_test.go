package inputval

import (
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/domain/models"
)

func TestValidatePreference(t *testing.T) {
	tests := []struct {
		name     string
		p        models.InstructorPreference
		wantRule string
	}{
		{"valid", models.InstructorPreference{DayOfWeek: "monday", StartTime: "08:00", EndTime: "12:30"}, ""},
		{"bad day", models.InstructorPreference{DayOfWeek: "funday", StartTime: "08:00", EndTime: "09:00"}, RuleInvalidDay},
		{"bad clock", models.InstructorPreference{DayOfWeek: "friday", StartTime: "8am", EndTime: "09:00"}, RuleInvalidClock},
		{"reversed window", models.InstructorPreference{DayOfWeek: "friday", StartTime: "10:00", EndTime: "09:00"}, RuleInvalidTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePreference(tt.p)
			if tt.wantRule == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected failures: %+v", res.Errors)
				}
				return
			}
			if !res.HasErrors() || res.Errors[0].Rule != tt.wantRule {
				t.Errorf("got %+v, want first rule %q", res.Errors, tt.wantRule)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	start := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

	if res := ValidateSchedule(models.InstructorSchedule{StartTime: start, EndTime: start.Add(time.Hour)}); res.HasErrors() {
		t.Errorf("valid schedule rejected: %+v", res.Errors)
	}
	res := ValidateSchedule(models.InstructorSchedule{StartTime: start, EndTime: start})
	if !res.HasErrors() || res.Errors[0].Rule != RuleInvalidTimeRange {
		t.Errorf("empty schedule window accepted: %+v", res.Errors)
	}
}
