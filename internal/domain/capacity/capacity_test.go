package capacity

import (
	"testing"

	"github.com/dalemusser/groupbook/internal/domain/models"
	"pgregory.net/rapid"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name   string
		limits Limits
		counts Counts
		want   Snapshot
	}{
		{
			name:   "empty group",
			limits: Limits{Capacity: 2, MaxMale: 1, MaxFemale: 1},
			counts: Counts{},
			want:   Snapshot{},
		},
		{
			name:   "male bucket full, room overall",
			limits: Limits{Capacity: 2, MaxMale: 1, MaxFemale: 1},
			counts: Counts{Total: 1, Male: 1},
			want: Snapshot{
				CurrentParticipants:     1,
				CurrentMaleParticipants: 1,
				IsMaleFull:              true,
			},
		},
		{
			name:   "overall full",
			limits: Limits{Capacity: 2, MaxMale: 1, MaxFemale: 1},
			counts: Counts{Total: 2, Male: 1, Female: 1},
			want: Snapshot{
				CurrentParticipants:       2,
				CurrentMaleParticipants:   1,
				CurrentFemaleParticipants: 1,
				IsFull:                    true,
				IsMaleFull:                true,
				IsFemaleFull:              true,
			},
		},
		{
			name:   "zero sub-limits are unbounded",
			limits: Limits{Capacity: 5},
			counts: Counts{Total: 3, Male: 2, Female: 1},
			want: Snapshot{
				CurrentParticipants:       3,
				CurrentMaleParticipants:   2,
				CurrentFemaleParticipants: 1,
			},
		},
		{
			name:   "other-gender registrants count toward total only",
			limits: Limits{Capacity: 1, MaxMale: 1},
			counts: Counts{Total: 1},
			want:   Snapshot{CurrentParticipants: 1, IsFull: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Of(tt.limits, tt.counts)
			if got != tt.want {
				t.Errorf("Of(%+v, %+v) = %+v, want %+v", tt.limits, tt.counts, got, tt.want)
			}
		})
	}
}

func TestAdmits(t *testing.T) {
	maleFull := Of(Limits{Capacity: 2, MaxMale: 1, MaxFemale: 1}, Counts{Total: 1, Male: 1})

	tests := []struct {
		gender string
		want   bool
	}{
		{models.GenderMale, false},
		{models.GenderFemale, true},
		{models.GenderOther, true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run("gender="+tt.gender, func(t *testing.T) {
			if got := maleFull.Admits(tt.gender); got != tt.want {
				t.Errorf("Admits(%q) = %v, want %v", tt.gender, got, tt.want)
			}
		})
	}

	full := Of(Limits{Capacity: 1}, Counts{Total: 1})
	for _, g := range []string{models.GenderMale, models.GenderFemale, ""} {
		if full.Admits(g) {
			t.Errorf("full group admitted gender %q", g)
		}
	}
}

func TestTally(t *testing.T) {
	got := Tally([]string{"male", "female", "other", "", "male"})
	want := Counts{Total: 5, Male: 2, Female: 1}
	if got != want {
		t.Errorf("Tally = %+v, want %+v", got, want)
	}
}

// Admitting only what Admits approves never pushes a group past any limit.
func TestAdmits_NeverExceedsLimits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxMale := rapid.IntRange(0, 10).Draw(t, "maxMale")
		maxFemale := rapid.IntRange(0, 10).Draw(t, "maxFemale")
		capacity := rapid.IntRange(max(1, maxMale+maxFemale), 25).Draw(t, "capacity")
		l := Limits{Capacity: capacity, MaxMale: maxMale, MaxFemale: maxFemale}

		arrivals := rapid.SliceOf(rapid.SampledFrom([]string{
			models.GenderMale, models.GenderFemale, models.GenderOther, "",
		})).Draw(t, "arrivals")

		var c Counts
		for _, g := range arrivals {
			if Of(l, c).Admits(g) {
				c = c.Add(g)
			}
		}

		if c.Total > l.Capacity {
			t.Fatalf("total %d exceeds capacity %d", c.Total, l.Capacity)
		}
		if l.MaxMale > 0 && c.Male > l.MaxMale {
			t.Fatalf("male %d exceeds max_male %d", c.Male, l.MaxMale)
		}
		if l.MaxFemale > 0 && c.Female > l.MaxFemale {
			t.Fatalf("female %d exceeds max_female %d", c.Female, l.MaxFemale)
		}
	})
}

// A snapshot's flags agree with its counts regardless of limits.
func TestOf_FlagsMatchCounts(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := Limits{
			Capacity:  rapid.IntRange(1, 20).Draw(t, "capacity"),
			MaxMale:   rapid.IntRange(0, 20).Draw(t, "maxMale"),
			MaxFemale: rapid.IntRange(0, 20).Draw(t, "maxFemale"),
		}
		male := rapid.IntRange(0, 20).Draw(t, "male")
		female := rapid.IntRange(0, 20).Draw(t, "female")
		other := rapid.IntRange(0, 20).Draw(t, "other")
		c := Counts{Total: male + female + other, Male: male, Female: female}

		s := Of(l, c)
		if s.IsFull != (c.Total >= l.Capacity) {
			t.Fatalf("IsFull=%v for total=%d capacity=%d", s.IsFull, c.Total, l.Capacity)
		}
		if s.IsMaleFull && l.MaxMale == 0 {
			t.Fatalf("IsMaleFull with no male sub-limit")
		}
		if s.IsFemaleFull && l.MaxFemale == 0 {
			t.Fatalf("IsFemaleFull with no female sub-limit")
		}
	})
}
