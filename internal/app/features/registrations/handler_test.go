package registrations_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/registrations"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/timeouts"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"github.com/dalemusser/groupbook/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	st := testutil.NewSQLStore(t)
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatal(err)
	}
	h := registrations.NewHandler(enrollment.New(st, logger), uierrors.NewErrorLogger(logger), timeouts.Defaults(), logger)
	return registrations.Routes(h, sm), testutil.NewFixtures(t, st)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, router http.Handler, u models.User, groupID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/", map[string]any{"group_id": groupID})
	return serve(router, testutil.WithUser(req, testutil.AsTestUser(u)))
}

func TestRegister_SuccessThenIdempotent(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2})
	v := fx.CreateVisitor(ctx, models.GenderFemale)

	rec := register(t, router, v, g.ID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var first models.Registration
	testutil.DecodeJSON(t, rec, &first)
	if first.VisitorID != v.ID || first.GroupID != g.ID || first.Attended {
		t.Errorf("unexpected registration %+v", first)
	}

	var again models.Registration
	testutil.DecodeJSON(t, register(t, router, v, g.ID), &again)
	if again.ID != first.ID {
		t.Errorf("repeat registration created a new record: %d vs %d", again.ID, first.ID)
	}
}

func TestRegister_CapacityExceeded(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 3, MaxMale: 1, MaxFemale: 2})
	fx.Register(ctx, fx.CreateVisitor(ctx, models.GenderMale).ID, g.ID)

	rec := register(t, router, fx.CreateVisitor(ctx, models.GenderMale), g.ID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp uierrors.Response
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Error != uierrors.CodeCapacityExceeded {
		t.Errorf("error code = %q", resp.Error)
	}
}

func TestRegister_Errors(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	v := fx.CreateVisitor(ctx, models.GenderMale)

	if rec := register(t, router, v, 9999); rec.Code != http.StatusNotFound {
		t.Errorf("unknown group: expected 404, got %d", rec.Code)
	}
	if rec := register(t, router, v, 0); rec.Code != http.StatusBadRequest {
		t.Errorf("missing group_id: expected 400, got %d", rec.Code)
	}

	inst := fx.CreateInstructor(ctx)
	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2})
	if rec := register(t, router, inst, g.ID); rec.Code != http.StatusForbidden {
		t.Errorf("instructor: expected 403, got %d", rec.Code)
	}

	started := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2, StartIn: -time.Hour})
	rec := register(t, router, v, started.ID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("started group: expected 409, got %d", rec.Code)
	}
	var resp uierrors.Response
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Error != uierrors.CodeGroupStarted {
		t.Errorf("started group: error code = %q", resp.Error)
	}
}

func TestRegister_ConcurrentRequestsNeverOverfill(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2})
	visitors := make([]models.User, 8)
	for i := range visitors {
		visitors[i] = fx.CreateVisitor(ctx, models.GenderOther)
	}

	var wg sync.WaitGroup
	codes := make([]int, len(visitors))
	for i, v := range visitors {
		wg.Add(1)
		go func(i int, v models.User) {
			defer wg.Done()
			req := testutil.NewJSONRequest(t, "POST", "/", map[string]any{"group_id": g.ID})
			codes[i] = serve(router, testutil.WithUser(req, testutil.AsTestUser(v))).Code
		}(i, v)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Errorf("unexpected status %d", c)
		}
	}
	if created != 2 {
		t.Errorf("created = %d, want 2", created)
	}
}

func TestServeMine(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v := fx.CreateVisitor(ctx, models.GenderMale)
	other := fx.CreateVisitor(ctx, models.GenderMale)
	g1 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 5})
	g2 := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 5})
	fx.Register(ctx, v.ID, g1.ID)
	fx.Register(ctx, v.ID, g2.ID)
	fx.Register(ctx, other.ID, g1.ID)

	rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", "/?limit=1", nil), testutil.AsTestUser(v)))
	var list struct {
		Items []models.Registration `json:"items"`
		Limit int                   `json:"limit"`
	}
	testutil.DecodeJSON(t, rec, &list)
	if rec.Code != http.StatusOK || len(list.Items) != 1 || list.Items[0].VisitorID != v.ID || list.Limit != 1 {
		t.Errorf("mine with limit=1: %d %+v", rec.Code, list)
	}

	testutil.DecodeJSON(t, serve(router, testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.AsTestUser(v))), &list)
	if len(list.Items) != 2 {
		t.Errorf("mine: %+v", list.Items)
	}
}

func TestAttendance(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateInstructor(ctx)
	other := fx.CreateInstructor(ctx)
	g := fx.CreateGroup(ctx, testutil.GroupSpec{Capacity: 2, InstructorID: &owner.ID})
	reg := fx.Register(ctx, fx.CreateVisitor(ctx, models.GenderMale).ID, g.ID)
	path := fmt.Sprintf("/%d/attendance", reg.ID)

	put := func(u models.User, body any) *httptest.ResponseRecorder {
		return serve(router, testutil.WithUser(testutil.NewJSONRequest(t, "PUT", path, body), testutil.AsTestUser(u)))
	}

	if rec := put(other, map[string]any{"attended": true}); rec.Code != http.StatusForbidden {
		t.Errorf("other instructor: expected 403, got %d", rec.Code)
	}
	if rec := put(owner, map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Errorf("missing attended: expected 400, got %d", rec.Code)
	}

	rec := put(owner, map[string]any{"attended": true})
	var got models.Registration
	testutil.DecodeJSON(t, rec, &got)
	if rec.Code != http.StatusOK || !got.Attended {
		t.Errorf("owner mark: %d %+v", rec.Code, got)
	}

	visitorReq := testutil.WithUser(testutil.NewJSONRequest(t, "PUT", path, map[string]any{"attended": false}), testutil.VisitorUser(1, "male"))
	if rec := serve(router, visitorReq); rec.Code != http.StatusForbidden {
		t.Errorf("visitor: expected 403, got %d", rec.Code)
	}
}
