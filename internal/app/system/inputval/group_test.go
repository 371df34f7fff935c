package inputval

import (
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/domain/models"
)

func validGroup() models.Group {
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	return models.Group{
		Name:      "Morning lanes",
		Capacity:  4,
		MaxMale:   2,
		MaxFemale: 2,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestValidateGroup(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Group)
		wantRule string
	}{
		{"valid", func(*models.Group) {}, ""},
		{"end equals start", func(g *models.Group) { g.EndTime = g.StartTime }, RuleInvalidTimeRange},
		{"end before start", func(g *models.Group) { g.EndTime = g.StartTime.Add(-time.Minute) }, RuleInvalidTimeRange},
		{"negative male limit", func(g *models.Group) { g.MaxMale = -1 }, RuleInvalidLimit},
		{"negative female limit", func(g *models.Group) { g.MaxFemale = -1 }, RuleInvalidLimit},
		{"zero capacity", func(g *models.Group) { g.Capacity, g.MaxMale, g.MaxFemale = 0, 0, 0 }, RuleInvalidCapacity},
		{"capacity below limit sum", func(g *models.Group) { g.Capacity = 3 }, RuleCapacityLimitMismatch},
		{"one-sided limit above capacity is allowed", func(g *models.Group) { g.Capacity, g.MaxMale, g.MaxFemale = 1, 5, 0 }, ""},
		{"no sub-limits", func(g *models.Group) { g.Capacity, g.MaxMale, g.MaxFemale = 1, 0, 0 }, ""},
		{"blank name", func(g *models.Group) { g.Name = "  " }, RuleNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGroup()
			tt.mutate(&g)
			res := ValidateGroup(g)

			if tt.wantRule == "" {
				if res.HasErrors() {
					t.Fatalf("unexpected failures: %+v", res.Errors)
				}
				return
			}
			ve, ok := res.Err().(*ValidationError)
			if !ok {
				t.Fatalf("expected failure %q, got none", tt.wantRule)
			}
			if ve.Rule() != tt.wantRule {
				t.Errorf("first rule = %q, want %q (all: %+v)", ve.Rule(), tt.wantRule, ve.Errors)
			}
		})
	}
}

func TestValidateGroup_CapacityThreeWithTwoAndTwo(t *testing.T) {
	g := validGroup()
	g.Capacity, g.MaxMale, g.MaxFemale = 3, 2, 2

	ve, ok := ValidateGroup(g).Err().(*ValidationError)
	if !ok || !ve.Has(RuleCapacityLimitMismatch) {
		t.Fatalf("expected %s, got %v", RuleCapacityLimitMismatch, ValidateGroup(g).Errors)
	}
}
