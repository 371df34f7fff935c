package inputval

import (
	"strings"

	"github.com/dalemusser/groupbook/internal/domain/models"
)

// Group rule identifiers.
const (
	RuleNameRequired          = "name_required"
	RuleInvalidTimeRange      = "invalid_time_range"
	RuleInvalidLimit          = "invalid_limit"
	RuleInvalidCapacity       = "invalid_capacity"
	RuleCapacityLimitMismatch = "capacity_limit_mismatch"
)

// GroupRules are applied, in order, on every group create and update. They
// look only at the candidate itself, never at existing registrations.
var GroupRules = []Rule[models.Group]{
	groupNameRequired,
	groupTimeRange,
	groupLimitsNonNegative,
	groupCapacityPositive,
	groupCapacityCoversLimits,
}

// ValidateGroup runs GroupRules against g.
func ValidateGroup(g models.Group) *Result {
	return Run(g, GroupRules...)
}

func groupNameRequired(g models.Group) *FieldError {
	if strings.TrimSpace(g.Name) == "" {
		return &FieldError{Field: "name", Rule: RuleNameRequired, Message: "Name is required."}
	}
	return nil
}

func groupTimeRange(g models.Group) *FieldError {
	if !g.EndTime.After(g.StartTime) {
		return &FieldError{Field: "end_time", Rule: RuleInvalidTimeRange, Message: "end_time must be after start_time."}
	}
	return nil
}

func groupLimitsNonNegative(g models.Group) *FieldError {
	if g.MaxMale < 0 || g.MaxFemale < 0 {
		return &FieldError{Field: "max_male", Rule: RuleInvalidLimit, Message: "Gender limits must not be negative."}
	}
	return nil
}

func groupCapacityPositive(g models.Group) *FieldError {
	if g.Capacity < 1 {
		return &FieldError{Field: "capacity", Rule: RuleInvalidCapacity, Message: "Capacity must be at least 1."}
	}
	return nil
}

func groupCapacityCoversLimits(g models.Group) *FieldError {
	if g.MaxMale > 0 && g.MaxFemale > 0 && g.Capacity < g.MaxMale+g.MaxFemale {
		return &FieldError{Field: "capacity", Rule: RuleCapacityLimitMismatch, Message: "Capacity must be at least the sum of gender limits."}
	}
	return nil
}
