// Package store declares the entity store the rest of the app talks to.
//
// Two backends implement Store: mongostore (MongoDB, the default) and
// sqlstore (SQLite). Relationships are plain integer foreign keys; callers
// resolve them through these methods rather than through embedded objects.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (user email) already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrConflict is returned when a concurrent admission collided with this
	// one and the store could not serialize them. Callers may retry.
	ErrConflict = errors.New("concurrent admission conflict")
)

// DefaultLimit matches the API's default page size.
const DefaultLimit = 100

// Page is an offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps negative offsets and fills in the default limit.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// UserFilter narrows ListUsers. Zero values are ignored.
type UserFilter struct {
	Role string
}

// UserPatch holds optional user updates; nil fields are left unchanged.
type UserPatch struct {
	FullName       *string
	Email          *string
	HashedPassword *string
	Role           *string
	Gender         *string
	IsActive       *bool
}

// GroupFilter narrows ListGroups. Zero values are ignored.
type GroupFilter struct {
	InstructorID *int64
	StartsAfter  *time.Time // strictly after
	ExcludeIDs   []int64
}

// RegistrationFilter narrows ListRegistrations. Zero values are ignored.
type RegistrationFilter struct {
	VisitorID *int64
	GroupID   *int64
}

// InstructorFilter narrows preference/schedule listings.
type InstructorFilter struct {
	InstructorID *int64
}

// AdmitCheck decides whether a new registration may be committed. It is
// called inside the store's atomic section with the group and the occupancy
// that precedes the new registration. A non-nil error aborts the admission
// and is returned unchanged from Admit.
type AdmitCheck func(g models.Group, before capacity.Counts) error

// Users is the user record store.
type Users interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, f UserFilter, p Page) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (models.User, error)
}

// Groups is the group record store. ListGroups orders by start_time, then id.
type Groups interface {
	CreateGroup(ctx context.Context, g models.Group) (models.Group, error)
	GetGroup(ctx context.Context, id int64) (models.Group, error)
	ListGroups(ctx context.Context, f GroupFilter, p Page) ([]models.Group, error)
	UpdateGroup(ctx context.Context, g models.Group) (models.Group, error)
	SetInstructor(ctx context.Context, groupID int64, instructorID *int64) (models.Group, error)
}

// Registrations is the registration record store.
type Registrations interface {
	GetRegistration(ctx context.Context, id int64) (models.Registration, error)
	FindRegistration(ctx context.Context, visitorID, groupID int64) (models.Registration, error)
	ListRegistrations(ctx context.Context, f RegistrationFilter, p Page) ([]models.Registration, error)
	// RegisteredGroupIDs returns every group id the visitor holds a
	// registration for, attended or not.
	RegisteredGroupIDs(ctx context.Context, visitorID int64) ([]int64, error)
	// Occupancy counts registrations per group, split by the visitors'
	// current genders. Groups with no registrations are absent from the map.
	Occupancy(ctx context.Context, groupIDs []int64) (map[int64]capacity.Counts, error)
	// Admit atomically creates the (visitorID, groupID) registration if check
	// approves. Returns ErrNotFound if the group does not exist and
	// ErrConflict if a concurrent admission could not be serialized.
	Admit(ctx context.Context, visitorID, groupID int64, check AdmitCheck) (models.Registration, error)
	SetAttended(ctx context.Context, id int64, attended bool) (models.Registration, error)
}

// Preferences is the instructor preference store.
type Preferences interface {
	CreatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error)
	GetPreference(ctx context.Context, id int64) (models.InstructorPreference, error)
	ListPreferences(ctx context.Context, f InstructorFilter, p Page) ([]models.InstructorPreference, error)
	UpdatePreference(ctx context.Context, p models.InstructorPreference) (models.InstructorPreference, error)
}

// Schedules is the instructor schedule store.
type Schedules interface {
	CreateSchedule(ctx context.Context, s models.InstructorSchedule) (models.InstructorSchedule, error)
	GetSchedule(ctx context.Context, id int64) (models.InstructorSchedule, error)
	ListSchedules(ctx context.Context, f InstructorFilter, p Page) ([]models.InstructorSchedule, error)
	UpdateSchedule(ctx context.Context, s models.InstructorSchedule) (models.InstructorSchedule, error)
}

// Store is the full entity store.
type Store interface {
	Users
	Groups
	Registrations
	Preferences
	Schedules

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
