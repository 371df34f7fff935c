package preferences_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/groupbook/internal/app/enrollment"
	uierrors "github.com/dalemusser/groupbook/internal/app/features/errors"
	"github.com/dalemusser/groupbook/internal/app/features/preferences"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
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
	h := preferences.NewHandler(enrollment.New(st, logger), uierrors.NewErrorLogger(logger), timeouts.Defaults(), logger)
	return preferences.Routes(h, sm), testutil.NewFixtures(t, st)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndRead(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx)
	other := fx.CreateInstructor(ctx)
	me := testutil.AsTestUser(inst)

	req := testutil.NewJSONRequest(t, "POST", "/", map[string]string{"day_of_week": "Thursday", "start_time": "14:00", "end_time": "16:00"})
	rec := serve(router, testutil.WithUser(req, me))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var p models.InstructorPreference
	testutil.DecodeJSON(t, rec, &p)
	if p.InstructorID != inst.ID || p.DayOfWeek != models.Thursday {
		t.Errorf("unexpected preference %+v", p)
	}

	path := fmt.Sprintf("/%d", p.ID)
	if rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", path, nil), me)); rec.Code != http.StatusOK {
		t.Errorf("owner read: expected 200, got %d", rec.Code)
	}
	if rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", path, nil), testutil.AsTestUser(other))); rec.Code != http.StatusForbidden {
		t.Errorf("other instructor read: expected 403, got %d", rec.Code)
	}
	if rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", path, nil), testutil.AdminUser(1))); rec.Code != http.StatusOK {
		t.Errorf("admin read: expected 200, got %d", rec.Code)
	}
	if rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.VisitorUser(5, ""))); rec.Code != http.StatusForbidden {
		t.Errorf("visitor list: expected 403, got %d", rec.Code)
	}
}

func TestCreate_Invalid(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	me := testutil.AsTestUser(fx.CreateInstructor(ctx))

	req := testutil.NewJSONRequest(t, "POST", "/", map[string]string{"day_of_week": "monday", "start_time": "16:00", "end_time": "14:00"})
	rec := serve(router, testutil.WithUser(req, me))
	var resp uierrors.Response
	testutil.DecodeJSON(t, rec, &resp)
	if rec.Code != http.StatusUnprocessableEntity || resp.Rule != inputval.RuleInvalidTimeRange {
		t.Errorf("reversed window: %d %+v", rec.Code, resp)
	}
}

func TestListAndUpdate(t *testing.T) {
	router, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx)
	other := fx.CreateInstructor(ctx)
	admin := testutil.AdminUser(1)

	for _, who := range []models.User{inst, other} {
		req := testutil.NewJSONRequest(t, "POST", "/", map[string]any{"instructor_id": who.ID, "day_of_week": "monday", "start_time": "09:00", "end_time": "10:00"})
		if rec := serve(router, testutil.WithUser(req, admin)); rec.Code != http.StatusCreated {
			t.Fatalf("admin create: %d %s", rec.Code, rec.Body.String())
		}
	}

	var list struct {
		Items []models.InstructorPreference `json:"items"`
	}
	rec := serve(router, testutil.WithUser(httptest.NewRequest("GET", fmt.Sprintf("/?instructor_id=%d", other.ID), nil), admin))
	testutil.DecodeJSON(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].InstructorID != other.ID {
		t.Errorf("admin filtered list: %+v", list.Items)
	}

	rec = serve(router, testutil.WithUser(httptest.NewRequest("GET", "/", nil), testutil.AsTestUser(inst)))
	testutil.DecodeJSON(t, rec, &list)
	if len(list.Items) != 1 || list.Items[0].InstructorID != inst.ID {
		t.Fatalf("own list: %+v", list.Items)
	}

	path := fmt.Sprintf("/%d", list.Items[0].ID)
	req := testutil.NewJSONRequest(t, "PUT", path, map[string]string{"day_of_week": "friday", "start_time": "10:00", "end_time": "12:00"})
	rec = serve(router, testutil.WithUser(req, testutil.AsTestUser(inst)))
	var up models.InstructorPreference
	testutil.DecodeJSON(t, rec, &up)
	if rec.Code != http.StatusOK || up.DayOfWeek != models.Friday || up.EndTime != "12:00" {
		t.Errorf("update: %d %+v", rec.Code, up)
	}

	req = testutil.NewJSONRequest(t, "PUT", "/9999", map[string]string{"day_of_week": "friday", "start_time": "10:00", "end_time": "12:00"})
	if rec := serve(router, testutil.WithUser(req, admin)); rec.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", rec.Code)
	}
}
