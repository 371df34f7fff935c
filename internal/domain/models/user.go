// internal/domain/models/user.go
package models

import "time"

// User represents admins, instructors, and visitors.
//
// NOTE:
//   - Registrations are not embedded on User.
//     Use the registrations collection/table to discover a visitor's groups.
//   - HashedPassword never leaves the server (json:"-").
type User struct {
	ID             int64     `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"` // lowercase, trimmed
	FullName       string    `bson:"full_name" json:"full_name"`
	FullNameCI     string    `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	HashedPassword string    `bson:"hashed_password" json:"-"`
	Role           string    `bson:"role" json:"role"`                         // admin | instructor | visitor
	Gender         string    `bson:"gender,omitempty" json:"gender,omitempty"` // male | female | other | ""
	IsActive       bool      `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
