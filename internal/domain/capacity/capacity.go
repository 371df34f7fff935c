// Package capacity derives a group's occupancy and fullness flags from its
// configured limits and its current registrations.
//
// Everything here is a pure function of its inputs. Results are recomputed on
// every read and never stored, because any new registration invalidates them.
package capacity

import "github.com/dalemusser/groupbook/internal/domain/models"

// Limits are the configured bounds of a group. A gender limit of 0 means
// that bucket is bounded only by Capacity.
type Limits struct {
	Capacity  int
	MaxMale   int
	MaxFemale int
}

// LimitsOf extracts the limits from a group.
func LimitsOf(g models.Group) Limits {
	return Limits{Capacity: g.Capacity, MaxMale: g.MaxMale, MaxFemale: g.MaxFemale}
}

// Counts is the number of registrations in a group, overall and per gender
// bucket. Visitors whose gender is "other" or unset count only toward Total.
// Attendance is irrelevant: registered counts, attended or not.
type Counts struct {
	Total  int
	Male   int
	Female int
}

// Add returns c with one more registration of the given gender.
func (c Counts) Add(gender string) Counts {
	c.Total++
	switch gender {
	case models.GenderMale:
		c.Male++
	case models.GenderFemale:
		c.Female++
	}
	return c
}

// Tally counts a set of registrants by gender.
func Tally(genders []string) Counts {
	var c Counts
	for _, g := range genders {
		c = c.Add(g)
	}
	return c
}

// Snapshot is the derived occupancy of one group at one instant.
type Snapshot struct {
	CurrentParticipants       int  `json:"current_participants"`
	CurrentMaleParticipants   int  `json:"current_male_participants"`
	CurrentFemaleParticipants int  `json:"current_female_participants"`
	IsFull                    bool `json:"is_full"`
	IsMaleFull                bool `json:"is_male_full"`
	IsFemaleFull              bool `json:"is_female_full"`
}

// Of computes the snapshot for limits l and counts c.
func Of(l Limits, c Counts) Snapshot {
	return Snapshot{
		CurrentParticipants:       c.Total,
		CurrentMaleParticipants:   c.Male,
		CurrentFemaleParticipants: c.Female,
		IsFull:                    c.Total >= l.Capacity,
		IsMaleFull:                l.MaxMale > 0 && c.Male >= l.MaxMale,
		IsFemaleFull:              l.MaxFemale > 0 && c.Female >= l.MaxFemale,
	}
}

// Admits reports whether one more registrant of the given gender fits.
//
//	male:      not full and male bucket not full
//	female:    not full and female bucket not full
//	otherwise: not full
func (s Snapshot) Admits(gender string) bool {
	if s.IsFull {
		return false
	}
	switch gender {
	case models.GenderMale:
		return !s.IsMaleFull
	case models.GenderFemale:
		return !s.IsFemaleFull
	default:
		return true
	}
}
