// Package userstore holds account rules layered over store.Users:
// password hashing, credential checks, and the session user fetcher.
package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/inputval"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
	"github.com/dalemusser/groupbook/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used for stored passwords.
const DefaultCost = 12

// ErrInvalidCredentials is returned by Authenticate for an unknown email,
// a wrong password, or an inactive account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Store wraps the user record store with account rules.
type Store struct {
	users store.Users
	cost  int
}

// New creates a Store hashing with DefaultCost.
func New(users store.Users) *Store {
	return &Store{users: users, cost: DefaultCost}
}

// WithCost returns a copy of s that hashes with the given bcrypt cost.
func (s *Store) WithCost(cost int) *Store {
	cp := *s
	cp.cost = cost
	return &cp
}

// NewUser is the input for Create.
type NewUser struct {
	Email    string
	FullName string
	Password string
	Role     string
	Gender   string
}

// Create validates in, hashes the password, and stores an active user.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	u := models.User{
		Email:    normalize.Email(in.Email),
		FullName: normalize.Name(in.FullName),
		Role:     normalize.Role(in.Role),
		Gender:   normalize.Gender(in.Gender),
		IsActive: true,
	}
	if err := inputval.ValidateUser(inputval.UserInput{
		Email:    u.Email,
		Password: in.Password,
		Role:     u.Role,
		Gender:   u.Gender,
	}).Err(); err != nil {
		return models.User{}, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u.HashedPassword = hash
	return s.users.CreateUser(ctx, u)
}

// Update is the input for Update. Nil fields are left unchanged.
type Update struct {
	Email    *string
	FullName *string
	Password *string
	Role     *string
	Gender   *string
	IsActive *bool
}

// Update validates the changed fields against the current record and
// applies them.
func (s *Store) Update(ctx context.Context, id int64, in Update) (models.User, error) {
	cur, err := s.users.GetUser(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	check := inputval.UserInput{
		Email:            cur.Email,
		Role:             cur.Role,
		Gender:           cur.Gender,
		PasswordOptional: true,
	}
	var patch store.UserPatch
	if in.Email != nil {
		v := normalize.Email(*in.Email)
		check.Email, patch.Email = v, &v
	}
	if in.FullName != nil {
		v := normalize.Name(*in.FullName)
		patch.FullName = &v
	}
	if in.Role != nil {
		v := normalize.Role(*in.Role)
		check.Role, patch.Role = v, &v
	}
	if in.Gender != nil {
		v := normalize.Gender(*in.Gender)
		check.Gender, patch.Gender = v, &v
	}
	if in.Password != nil {
		check.Password = *in.Password
		check.PasswordOptional = false
	}
	if err := inputval.ValidateUser(check).Err(); err != nil {
		return models.User{}, err
	}

	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		patch.HashedPassword = &hash
	}
	patch.IsActive = in.IsActive
	return s.users.UpdateUser(ctx, id, patch)
}

// Authenticate returns the active user whose email and password match.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetUserByEmail(ctx, normalize.Email(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !u.IsActive {
		return models.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates an admin account for email if no user holds that
// email yet. It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	_, err := s.users.GetUserByEmail(ctx, normalize.Email(email))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if fullName == "" {
		fullName = "Administrator"
	}
	_, err = s.Create(ctx, NewUser{
		Email:    email,
		FullName: fullName,
		Password: password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, store.ErrDuplicate) {
		// Another instance created it first.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// hash hashes a password using bcrypt with the store's cost.
func (s *Store) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
