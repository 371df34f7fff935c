// internal/domain/models/group.go
package models

import "time"

// Group is a scheduled session with an overall capacity and optional
// per-gender sub-limits.
//
// NOTE:
//   - Registrations are not embedded on Group. Occupancy is always derived
//     from the registrations collection/table (see domain/capacity).
//   - A MaxMale/MaxFemale of 0 means the bucket has no sub-limit.
type Group struct {
	ID           int64     `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	NameCI       string    `bson:"name_ci" json:"-"`
	Description  string    `bson:"description" json:"description"`
	Capacity     int       `bson:"capacity" json:"capacity"`
	MaxMale      int       `bson:"max_male" json:"max_male"`
	MaxFemale    int       `bson:"max_female" json:"max_female"`
	StartTime    time.Time `bson:"start_time" json:"start_time"`
	EndTime      time.Time `bson:"end_time" json:"end_time"`
	InstructorID *int64    `bson:"instructor_id,omitempty" json:"instructor_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasInstructor reports whether the group is assigned to the given user.
func (g Group) HasInstructor(userID int64) bool {
	return g.InstructorID != nil && *g.InstructorID == userID
}
