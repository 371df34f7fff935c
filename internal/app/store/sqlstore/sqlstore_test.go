package sqlstore_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/domain/capacity"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/groupbook/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	st := testutil.NewSQLStore(t)

	require.NoError(t, st.MigrateUp())
	v, dirty, err := st.Version()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), v)
}

func TestMigrate_DownAndUp(t *testing.T) {
	st := testutil.NewSQLStore(t)

	require.NoError(t, st.MigrateDown())
	require.NoError(t, st.MigrateUp())

	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, st.Ping(ctx))
}

func TestUsers_CreateNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	st := testutil.NewSQLStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := st.CreateUser(ctx, models.User{
		Email:    "  Visitor@Example.COM ",
		FullName: "  Zoë Visitor ",
		Role:     "VISITOR",
		Gender:   "Female",
		IsActive: true,
	})
	require.NoError(t, err)
	require.NotZero(t, u.ID)
	require.Equal(t, "visitor@example.com", u.Email)
	require.Equal(t, "Zoë Visitor", u.FullName)
	require.NotEmpty(t, u.FullNameCI)
	require.Equal(t, models.RoleVisitor, u.Role)
	require.Equal(t, models.GenderFemale, u.Gender)

	got, err := st.GetUserByEmail(ctx, "VISITOR@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.True(t, got.IsActive)

	_, err = st.CreateUser(ctx, models.User{Email: "visitor@example.com", Role: models.RoleVisitor})
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUsers_UpdateAndList(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v := fx.CreateVisitor(ctx, "")
	fx.CreateInstructor(ctx)

	gender := models.GenderMale
	inactive := false
	updated, err := st.UpdateUser(ctx, v.ID, store.UserPatch{Gender: &gender, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, models.GenderMale, updated.Gender)
	require.False(t, updated.IsActive)
	require.Equal(t, v.Email, updated.Email)

	visitors, err := st.ListUsers(ctx, store.UserFilter{Role: models.RoleVisitor}, store.Page{})
	require.NoError(t, err)
	require.Len(t, visitors, 1)

	_, err = st.UpdateUser(ctx, 9999, store.UserPatch{Gender: &gender})
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.GetUser(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroups_ListOrderAndFilters(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ins := fx.CreateInstructor(ctx)
	late := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 1, StartIn: 72 * time.Hour})
	early := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 1, StartIn: 24 * time.Hour, InstructorID: &ins.ID})
	past := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 1, StartIn: -24 * time.Hour})

	all, err := st.ListGroups(ctx, store.GroupFilter{}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, []int64{past.ID, early.ID, late.ID}, ids(all))

	now := time.Now()
	upcoming, err := st.ListGroups(ctx, store.GroupFilter{StartsAfter: &now, ExcludeIDs: []int64{late.ID}}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, []int64{early.ID}, ids(upcoming))

	mine, err := st.ListGroups(ctx, store.GroupFilter{InstructorID: &ins.ID}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, []int64{early.ID}, ids(mine))

	paged, err := st.ListGroups(ctx, store.GroupFilter{}, store.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []int64{early.ID}, ids(paged))
}

func TestGroups_SameStartTimeTieBreaksOnID(t *testing.T) {
	st := testutil.NewSQLStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	var want []int64
	for i := 0; i < 3; i++ {
		g, err := st.CreateGroup(ctx, models.Group{Name: "tie", Capacity: 1, StartTime: start, EndTime: start.Add(time.Hour)})
		require.NoError(t, err)
		want = append(want, g.ID)
	}

	got, err := st.ListGroups(ctx, store.GroupFilter{}, store.Page{})
	require.NoError(t, err)
	require.Equal(t, want, ids(got))
}

func TestGroups_UpdateAndSetInstructor(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2})
	ins := fx.CreateInstructor(ctx)

	g.Capacity = 5
	g.Name = "Renamed"
	updated, err := st.UpdateGroup(ctx, g)
	require.NoError(t, err)
	require.Equal(t, 5, updated.Capacity)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "renamed", updated.NameCI)
	require.True(t, updated.StartTime.Equal(g.StartTime))
	require.Nil(t, updated.InstructorID)

	assigned, err := st.SetInstructor(ctx, g.ID, &ins.ID)
	require.NoError(t, err)
	require.True(t, assigned.HasInstructor(ins.ID))

	cleared, err := st.SetInstructor(ctx, g.ID, nil)
	require.NoError(t, err)
	require.Nil(t, cleared.InstructorID)

	_, err = st.SetInstructor(ctx, 9999, nil)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistrations_OccupancyByGender(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g1 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 10})
	g2 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 10})
	empty := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 10})

	for _, gender := range []string{models.GenderMale, models.GenderMale, models.GenderFemale, models.GenderOther, ""} {
		fx.Register(ctx, fx.CreateVisitor(ctx, gender).ID, g1.ID)
	}
	fx.Register(ctx, fx.CreateVisitor(ctx, models.GenderFemale).ID, g2.ID)

	occ, err := st.Occupancy(ctx, []int64{g1.ID, g2.ID, empty.ID})
	require.NoError(t, err)
	require.Equal(t, capacity.Counts{Total: 5, Male: 2, Female: 1}, occ[g1.ID])
	require.Equal(t, capacity.Counts{Total: 1, Female: 1}, occ[g2.ID])
	_, ok := occ[empty.ID]
	require.False(t, ok)
}

func TestRegistrations_AdmitDuplicatePair(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 5})
	v := fx.CreateVisitor(ctx, models.GenderMale)
	first := fx.Register(ctx, v.ID, g.ID)

	_, err := st.Admit(ctx, v.ID, g.ID, func(models.Group, capacity.Counts) error { return nil })
	require.ErrorIs(t, err, store.ErrDuplicate)

	found, err := st.FindRegistration(ctx, v.ID, g.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
	require.False(t, found.Attended)
}

func TestRegistrations_AdmitCheckSeesPriorOccupancy(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 5})
	fx.Register(ctx, fx.CreateVisitor(ctx, models.GenderFemale).ID, g.ID)

	refuse := errors.New("refused")
	var seen capacity.Counts
	_, err := st.Admit(ctx, fx.CreateVisitor(ctx, models.GenderMale).ID, g.ID, func(got models.Group, before capacity.Counts) error {
		require.Equal(t, g.ID, got.ID)
		seen = before
		return refuse
	})
	require.ErrorIs(t, err, refuse)
	require.Equal(t, capacity.Counts{Total: 1, Female: 1}, seen)

	regs, err := st.ListRegistrations(ctx, store.RegistrationFilter{GroupID: &g.ID}, store.Page{})
	require.NoError(t, err)
	require.Len(t, regs, 1)
}

func TestRegistrations_AdmitUnknownGroup(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := st.Admit(ctx, fx.CreateVisitor(ctx, "").ID, 4242, func(models.Group, capacity.Counts) error { return nil })
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistrations_SetAttendedAndListings(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v := fx.CreateVisitor(ctx, models.GenderFemale)
	g1 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 3})
	g2 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 3})
	r1 := fx.Register(ctx, v.ID, g1.ID)
	fx.Register(ctx, v.ID, g2.ID)

	marked, err := st.SetAttended(ctx, r1.ID, true)
	require.NoError(t, err)
	require.True(t, marked.Attended)

	groupIDs, err := st.RegisteredGroupIDs(ctx, v.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{g1.ID, g2.ID}, groupIDs)

	mine, err := st.ListRegistrations(ctx, store.RegistrationFilter{VisitorID: &v.ID}, store.Page{})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	_, err = st.SetAttended(ctx, 9999, true)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestInstructorRecords(t *testing.T) {
	st := testutil.NewSQLStore(t)
	fx := testutil.NewFixtures(t, st)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ins := fx.CreateInstructor(ctx)

	p, err := st.CreatePreference(ctx, models.InstructorPreference{InstructorID: ins.ID, DayOfWeek: "Monday", StartTime: "08:00", EndTime: "10:00"})
	require.NoError(t, err)
	require.Equal(t, models.Monday, p.DayOfWeek)

	p.EndTime = "11:30"
	p, err = st.UpdatePreference(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "11:30", p.EndTime)

	prefs, err := st.ListPreferences(ctx, store.InstructorFilter{InstructorID: &ins.ID}, store.Page{})
	require.NoError(t, err)
	require.Len(t, prefs, 1)

	start := time.Date(2031, 5, 1, 9, 0, 0, 0, time.UTC)
	sch, err := st.CreateSchedule(ctx, models.InstructorSchedule{InstructorID: ins.ID, StartTime: start, EndTime: start.Add(2 * time.Hour)})
	require.NoError(t, err)

	got, err := st.GetSchedule(ctx, sch.ID)
	require.NoError(t, err)
	require.True(t, got.StartTime.Equal(start))

	_, err = st.GetPreference(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func ids(groups []models.Group) []int64 {
	out := make([]int64, len(groups))
	for i, g := range groups {
		out[i] = g.ID
	}
	return out
}
