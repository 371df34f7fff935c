package inputval

import (
	"slices"
	"strings"

	"github.com/dalemusser/groupbook/internal/domain/models"
)

// User rule identifiers.
const (
	RuleInvalidEmail     = "invalid_email"
	RulePasswordTooShort = "password_too_short"
	RuleInvalidRole      = "invalid_role"
	RuleInvalidGender    = "invalid_gender"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// UserInput is a user candidate before its password is hashed.
type UserInput struct {
	Email    string
	Password string
	Role     string
	Gender   string
	// PasswordOptional skips the password rule (updates that keep the
	// existing password).
	PasswordOptional bool
}

// UserRules are applied, in order, on user create and update.
var UserRules = []Rule[UserInput]{
	userEmail,
	userPassword,
	userRole,
	userGender,
}

// ValidateUser runs UserRules against in.
func ValidateUser(in UserInput) *Result {
	return Run(in, UserRules...)
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	return slices.Contains(models.Roles, role)
}

// IsValidGender reports whether gender is a known gender or unset.
func IsValidGender(gender string) bool {
	return gender == "" || slices.Contains(models.Genders, gender)
}

func userEmail(in UserInput) *FieldError {
	if !IsValidEmail(in.Email) {
		return &FieldError{Field: "email", Rule: RuleInvalidEmail, Message: "A valid email address is required."}
	}
	return nil
}

func userPassword(in UserInput) *FieldError {
	if in.PasswordOptional && in.Password == "" {
		return nil
	}
	if len(in.Password) < MinPasswordLength {
		return &FieldError{Field: "password", Rule: RulePasswordTooShort, Message: "Password must be at least 8 characters long."}
	}
	return nil
}

func userRole(in UserInput) *FieldError {
	if !IsValidRole(strings.TrimSpace(in.Role)) {
		return &FieldError{Field: "role", Rule: RuleInvalidRole, Message: `Role must be "admin", "instructor", or "visitor".`}
	}
	return nil
}

func userGender(in UserInput) *FieldError {
	if !IsValidGender(in.Gender) {
		return &FieldError{Field: "gender", Rule: RuleInvalidGender, Message: `Gender must be "male", "female", or "other".`}
	}
	return nil
}
