package models

// Roles.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleVisitor    = "visitor"
)

// Roles lists every valid role value.
var Roles = []string{RoleAdmin, RoleInstructor, RoleVisitor}

// Genders. An unset gender is stored as the empty string.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Genders lists every valid non-empty gender value.
var Genders = []string{GenderMale, GenderFemale, GenderOther}

// Days of week used by instructor preferences.
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// DaysOfWeek lists the valid day_of_week values in calendar order.
var DaysOfWeek = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
