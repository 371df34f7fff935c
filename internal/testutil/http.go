package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/domain/models"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID     int64
	Name   string
	Email  string
	Role   string
	Gender string
}

// AdminUser returns a TestUser with admin role.
func AdminUser(id int64) TestUser {
	return TestUser{ID: id, Name: "Test Admin", Email: "admin@test.com", Role: models.RoleAdmin}
}

// InstructorUser returns a TestUser with instructor role.
func InstructorUser(id int64) TestUser {
	return TestUser{ID: id, Name: "Test Instructor", Email: "instructor@test.com", Role: models.RoleInstructor}
}

// VisitorUser returns a TestUser with visitor role and the given gender.
func VisitorUser(id int64, gender string) TestUser {
	return TestUser{ID: id, Name: "Test Visitor", Email: "visitor@test.com", Role: models.RoleVisitor, Gender: gender}
}

// AsTestUser converts a stored user into a TestUser.
func AsTestUser(u models.User) TestUser {
	return TestUser{ID: u.ID, Name: u.FullName, Email: u.Email, Role: u.Role, Gender: u.Gender}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Gender: user.Gender,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// DecodeJSON decodes the recorder's body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
