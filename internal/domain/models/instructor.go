package models

import "time"

// InstructorPreference is a recurring weekly window an instructor would like
// to teach in. StartTime/EndTime are wall-clock "HH:MM" strings.
type InstructorPreference struct {
	ID           int64     `bson:"_id" json:"id"`
	InstructorID int64     `bson:"instructor_id" json:"instructor_id"`
	DayOfWeek    string    `bson:"day_of_week" json:"day_of_week"`
	StartTime    string    `bson:"start_time" json:"start_time"`
	EndTime      string    `bson:"end_time" json:"end_time"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// InstructorSchedule is an absolute time range an instructor is booked for.
type InstructorSchedule struct {
	ID           int64     `bson:"_id" json:"id"`
	InstructorID int64     `bson:"instructor_id" json:"instructor_id"`
	StartTime    time.Time `bson:"start_time" json:"start_time"`
	EndTime      time.Time `bson:"end_time" json:"end_time"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
