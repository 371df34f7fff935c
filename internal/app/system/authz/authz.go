// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/groupbook/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), name, numeric ID, and a found flag.
// If no user is present in context or the session carries a zero ID, it returns
// "", "", 0, false. Callers can trust that ok=true means an authenticated user
// with a usable ID.
func UserCtx(r *http.Request) (role string, name string, userID int64, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID <= 0 {
		return "", "", 0, false
	}
	return strings.ToLower(user.Role), user.Name, user.ID, true
}

// UserID returns the current user's ID, or 0 when nobody is signed in.
func UserID(r *http.Request) int64 {
	_, _, id, _ := UserCtx(r)
	return id
}

// Gender returns the signed-in user's recorded gender, lowercased.
func Gender(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return ""
	}
	return strings.ToLower(user.Gender)
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsInstructor reports whether the current request's user is an instructor.
func IsInstructor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "instructor"
}

// IsVisitor reports whether the current request's user is a visitor.
func IsVisitor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "visitor"
}

// IsSelfOrAdmin reports whether the current user is an admin or is the
// user identified by id.
func IsSelfOrAdmin(r *http.Request, id int64) bool {
	role, _, uid, ok := UserCtx(r)
	return ok && (role == "admin" || uid == id)
}

// CanManageInstructor reports whether the current user may manage records
// owned by the given instructor: admins always, instructors only their own.
func CanManageInstructor(r *http.Request, instructorID int64) bool {
	role, _, uid, ok := UserCtx(r)
	if !ok {
		return false
	}
	switch role {
	case "admin":
		return true
	case "instructor":
		return uid == instructorID
	}
	return false
}
