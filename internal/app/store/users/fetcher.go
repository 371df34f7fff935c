package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/groupbook/internal/app/system/auth"
	"github.com/dalemusser/groupbook/internal/app/system/normalize"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users   store.Users
	timeout time.Duration
}

// NewFetcher creates a UserFetcher over users. Each lookup is bounded by timeout.
func NewFetcher(users store.Users, timeout time.Duration) *Fetcher {
	return &Fetcher{users: users, timeout: timeout}
}

// FetchUser returns the session view of user id, or nil if the user no
// longer exists or is inactive. Other store failures are returned.
func (f *Fetcher) FetchUser(ctx context.Context, id int64) (*auth.SessionUser, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	u, err := f.users.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, nil
	}
	return &auth.SessionUser{
		ID:     u.ID,
		Name:   u.FullName,
		Email:  u.Email,
		Role:   normalize.Role(u.Role),
		Gender: u.Gender,
	}, nil
}
