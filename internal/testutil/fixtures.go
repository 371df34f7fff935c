package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures creates test records through a store.Store, so the same
// fixtures work against either backend.
type Fixtures struct {
	st  store.Store
	t   *testing.T
	seq atomic.Int64
}

// NewFixtures creates a new Fixtures instance for the given store.
func NewFixtures(t *testing.T, st store.Store) *Fixtures {
	t.Helper()
	return &Fixtures{st: st, t: t}
}

// Store returns the underlying store for direct access in tests.
func (f *Fixtures) Store() store.Store {
	return f.st
}

// CreateUser creates an active user with a unique email.
func (f *Fixtures) CreateUser(ctx context.Context, role, gender string) models.User {
	f.t.Helper()

	n := f.seq.Add(1)
	u, err := f.st.CreateUser(ctx, models.User{
		Email:          fmt.Sprintf("%s%d@test.com", role, n),
		FullName:       fmt.Sprintf("Test %s %d", role, n),
		HashedPassword: "x",
		Role:           role,
		Gender:         gender,
		IsActive:       true,
	})
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateVisitor creates a visitor of the given gender ("" for unset).
func (f *Fixtures) CreateVisitor(ctx context.Context, gender string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, models.RoleVisitor, gender)
}

// CreateInstructor creates an instructor.
func (f *Fixtures) CreateInstructor(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, models.RoleInstructor, "")
}

// CreateAdmin creates an admin.
func (f *Fixtures) CreateAdmin(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, models.RoleAdmin, "")
}

// GroupSpec describes a test group. StartIn is the offset from now; a zero
// Duration defaults to one day ahead.
type GroupSpec struct {
	Name         string
	Capacity     int
	MaxMale      int
	MaxFemale    int
	StartIn      time.Duration
	InstructorID *int64
}

// CreateGroup creates a one-hour group from spec.
func (f *Fixtures) CreateGroup(ctx context.Context, spec GroupSpec) models.Group {
	f.t.Helper()

	if spec.Name == "" {
		spec.Name = fmt.Sprintf("Group %d", f.seq.Add(1))
	}
	if spec.StartIn == 0 {
		spec.StartIn = 24 * time.Hour
	}
	start := time.Now().UTC().Add(spec.StartIn).Truncate(time.Second)

	g, err := f.st.CreateGroup(ctx, models.Group{
		Name:         spec.Name,
		Capacity:     spec.Capacity,
		MaxMale:      spec.MaxMale,
		MaxFemale:    spec.MaxFemale,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		InstructorID: spec.InstructorID,
	})
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// Register admits the visitor into the group unconditionally.
func (f *Fixtures) Register(ctx context.Context, visitorID, groupID int64) models.Registration {
	f.t.Helper()

	r, err := f.st.Admit(ctx, visitorID, groupID, func(models.Group, capacity.Counts) error { return nil })
	if err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return r
}
