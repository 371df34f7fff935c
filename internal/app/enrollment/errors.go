package enrollment

import "errors"

var (
	// ErrCapacityExceeded is returned when admitting the visitor would
	// overflow the group's capacity or the visitor's gender bucket.
	ErrCapacityExceeded = errors.New("group is full for this visitor")
	// ErrGroupStarted is returned when registering for a group whose start
	// time is not in the future.
	ErrGroupStarted = errors.New("group has already started")
	// ErrGroupNotFound is returned when the referenced group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrVisitorNotFound is returned when the referenced visitor does not exist.
	ErrVisitorNotFound = errors.New("visitor not found")
	// ErrNotVisitor is returned when a registration is requested for a user
	// whose role is not visitor.
	ErrNotVisitor = errors.New("only visitors can register for groups")
	// ErrRegistrationNotFound is returned when the referenced registration
	// does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrNotInstructor is returned when a group is assigned to a user whose
	// role is not instructor.
	ErrNotInstructor = errors.New("user is not an instructor")
	// ErrForbidden is returned when the acting user may not touch the record.
	ErrForbidden = errors.New("not permitted")
)
